package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
)

var ErrUserFieldsRequired = commonerrors.NewDomainError(
	"VALIDATION_FAILED",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"Name and email are required",
)
