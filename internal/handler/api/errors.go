package api

import (
	"net/http"
	"strconv"
	"time"

	"kyuaar/internal/handler/httperr"
	"kyuaar/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// abortDomainError translates usecase sentinels into user-renderable
// responses. Internal state never leaks: not-found and tombstoned are
// indistinguishable, and concurrency conflicts surface as a transient
// failure after the usecase layer has exhausted its retries.
func abortDomainError(c *gin.Context, err error, retryAfter time.Duration) {
	switch {
	case errs.Is(err, errs.ErrPacketNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "This code is not recognized", nil)
	case errs.Is(err, errs.ErrInvalidState):
		httperr.AbortWithError(c, http.StatusConflict, err, "This packet is not ready for that yet", nil)
	case errs.Is(err, errs.ErrValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Enter a valid phone number or URL", nil)
	case errs.Is(err, errs.ErrArtifactRejected):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Artifact rejected", nil)
	case errs.Is(err, errs.ErrRateLimitExceeded):
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		}
		httperr.AbortWithError(c, http.StatusTooManyRequests, err, "Update limit reached, try again later", nil)
	case errs.Is(err, errs.ErrStaleState):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Temporary conflict, please retry", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
