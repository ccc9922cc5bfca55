package handlers

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/indelible-labs/indelibled/pkg/errors"
)

type ErrorResponse struct {
	Code     uint16            `json:"code"`
	Name     string            `json:"name"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WriteError aborts the request with the json encoding of err. Errors without
// a code are reported as invalid input.
func WriteError(c *gin.Context, err error) {
	var structuredErr errors.Error
	if !stderrors.As(err, &structuredErr) {
		structuredErr = errors.INVALID_INPUT.Wrap(err)
	}
	//nolint:errcheck
	c.Error(structuredErr)
	c.AbortWithStatusJSON(
		runtime.HTTPStatusFromCode(structuredErr.GrpcCode()),
		ErrorResponse{
			Code:     structuredErr.Code(),
			Name:     structuredErr.CodeName(),
			Message:  structuredErr.Error(),
			Metadata: structuredErr.Metadata(),
		},
	)
}
