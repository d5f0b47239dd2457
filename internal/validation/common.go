/*-------------------------------------------------------------------------
 *
 * common.go
 *    Common validation functions for the Loanzaar workflow server
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/validation/common.go
 *
 *-------------------------------------------------------------------------
 */

package validation

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

/* ValidateRequired checks if a string is non-empty */
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required and cannot be empty", fieldName)
	}
	return nil
}

/* ValidateMaxLength checks if a string length is within limit */
func ValidateMaxLength(value, fieldName string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s length %d exceeds maximum %d", fieldName, len(value), maxLength)
	}
	return nil
}

/* ValidateUUID parses a UUID path or query parameter */
func ValidateUUID(value, fieldName string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %s", fieldName, value)
	}
	return id, nil
}

/* ReadAndValidateBody reads and validates HTTP request body size */
func ReadAndValidateBody(r *http.Request, maxSize int64) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("request body is nil")
	}

	/* Create a limited reader to prevent DoS */
	limitedReader := io.LimitReader(r.Body, maxSize+1)
	bodyBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if int64(len(bodyBytes)) > maxSize {
		return nil, fmt.Errorf("request body size %d exceeds maximum %d bytes", len(bodyBytes), maxSize)
	}

	return bodyBytes, nil
}

/* ValidateLimit validates limit parameter for pagination */
func ValidateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit cannot be negative: %d", limit)
	}
	if limit > 1000 {
		return fmt.Errorf("limit %d exceeds maximum 1000", limit)
	}
	return nil
}

/* ValidateOffset validates offset parameter for pagination */
func ValidateOffset(offset int) error {
	if offset < 0 {
		return fmt.Errorf("offset cannot be negative: %d", offset)
	}
	return nil
}

/* ValidateLoanAmount validates a loan amount in rupees */
func ValidateLoanAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("loan amount must be positive, got %d", amount)
	}
	if amount > 100_000_000 {
		return fmt.Errorf("loan amount %d exceeds maximum 100000000", amount)
	}
	return nil
}
