package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/ilp/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ParseClientConfig parses and validates a ClientConfig from JSON.
func ParseClientConfig(data []byte) (*types.ClientConfig, error) {
	var config types.ClientConfig

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse client config: %v", err),
			Err:     err,
		}
	}

	if err := validate.Struct(&config); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}

	return &config, nil
}

// ParseQuoteRequest parses a QuoteRequest from JSON. Struct-tag validation
// covers the required fields; the exactly-one-of amount invariant is
// enforced by QuoteRequest.Validate.
func ParseQuoteRequest(data []byte) (*types.QuoteRequest, error) {
	var req types.QuoteRequest

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidQuoteRequest,
			Message: fmt.Sprintf("failed to parse quote request: %v", err),
			Err:     err,
		}
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidQuoteRequest,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// ParsePaymentRequest parses a PaymentRequest from JSON and runs both
// struct-tag validation and the condition/expiry invariant checks.
func ParsePaymentRequest(data []byte) (*types.PaymentRequest, error) {
	var req types.PaymentRequest

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidPayment,
			Message: fmt.Sprintf("failed to parse payment request: %v", err),
			Err:     err,
		}
	}

	if err := validate.Struct(&req); err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrInvalidPayment,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// SerializeEnvelope converts a TransferEnvelope to its JSON wire form.
func SerializeEnvelope(envelope *types.TransferEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}
