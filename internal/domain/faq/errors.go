package faq

import (
	"context"
	"errors"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

// Error codes carried by apperrors.AppError.
const (
	CodeNormalizationFailed  = "normalization_failed"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeEmbeddingFailed      = "embedding_failed"
	CodeCatalogUnavailable   = "catalog_unavailable"
	CodeCacheFailed          = "cache_failed"
	CodeTimeout              = "timeout"
	CodeInternal             = "internal_error"
)

// classify maps any per-request failure onto a coded error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		if apperrors.IsCode(err, CodeTimeout) {
			return err
		}
		return apperrors.Wrap(CodeTimeout, "request timed out", err)
	}
	switch apperrors.CodeOf(err, "") {
	case CodeEmbeddingFailed, CodeTimeout, CodeInternal:
		return err
	case CodeNormalizationFailed:
		return apperrors.Wrap(CodeInternal, "normalization failed", err)
	}
	return apperrors.Wrap(CodeInternal, "unexpected failure", err)
}
