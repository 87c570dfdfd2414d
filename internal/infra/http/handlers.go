package http

import (
	"errors"
	"net/http"
	"time"

	"veritas/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type submissionRequest struct {
	ID        string                     `json:"id"`
	Payload   []byte                     `json:"payload"`
	MediaKind string                     `json:"media_kind"`
	Submitter string                     `json:"submitter"`
	Metadata  *domain.EnrichmentMetadata `json:"metadata,omitempty"`
}

func (req submissionRequest) toDomain() domain.Submission {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.Submission{
		ID:          id,
		Payload:     req.Payload,
		MediaKind:   domain.MediaKind(req.MediaKind),
		Submitter:   req.Submitter,
		Metadata:    req.Metadata,
		SubmittedAt: time.Now().UTC(),
	}
}

type submissionResponse struct {
	SubmissionID string                     `json:"submission_id"`
	Queued       bool                       `json:"queued,omitempty"`
	Status       domain.PipelineStatus      `json:"status,omitempty"`
	FailureCode  string                     `json:"failure_code,omitempty"`
	Record       *domain.ProofRecord        `json:"record,omitempty"`
	Report       *domain.VerificationReport `json:"report,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "online": s.conn.Online()})
}

func (s *Server) handleSubmit(c *gin.Context) {
	if !s.enforceRateLimit(c, "submissions:create") {
		return
	}
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	sub := req.toDomain()
	outcome, queued, err := s.intake.Submit(c.Request.Context(), sub)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, submissionResponse{SubmissionID: sub.ID, Queued: true})
		return
	}
	status := http.StatusOK
	if outcome.FailureCode == domain.FailurePolicyViolation {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, submissionResponse{
		SubmissionID: outcome.SubmissionID,
		Status:       outcome.Status,
		FailureCode:  outcome.FailureCode,
		Record:       outcome.Record,
		Report:       outcome.Report,
	})
}

func (s *Server) handleEnqueue(c *gin.Context) {
	if !s.enforceRateLimit(c, "submissions:enqueue") {
		return
	}
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	sub := req.toDomain()
	if err := s.intake.Enqueue(c.Request.Context(), sub); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, submissionResponse{SubmissionID: sub.ID, Queued: true})
}

func (s *Server) handleGetReport(c *gin.Context) {
	report, err := s.reports.FindBySubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	record, err := s.records.FindBySubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type coSignRequest struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

func (s *Server) handleCoSign(c *gin.Context) {
	if !s.enforceRateLimit(c, "reports:cosign") {
		return
	}
	var req coSignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	report, err := s.cosigner.Append(c.Request.Context(), c.Param("id"), domain.CoSignature{
		Signer:    req.Signer,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleQueueStats(c *gin.Context) {
	pending, err := s.intake.Pending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if s.queueDepth != nil {
		s.queueDepth(pending)
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "online": s.conn.Online()})
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

// handleConnectivity flips the connectivity state. Going online drains the
// offline queue before responding.
func (s *Server) handleConnectivity(c *gin.Context) {
	var req connectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "online flag is required")
		return
	}
	s.conn.Set(*req.Online)
	if !*req.Online {
		c.JSON(http.StatusOK, gin.H{"online": false})
		return
	}
	outcomes, err := s.intake.Drain(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if s.queueDepth != nil {
		if pending, err := s.intake.Pending(c.Request.Context()); err == nil {
			s.queueDepth(pending)
		}
	}
	c.JSON(http.StatusOK, gin.H{"online": true, "drained": len(outcomes), "outcomes": outcomes})
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrSubmissionInvalid):
		status, code = http.StatusBadRequest, "SUBMISSION_INVALID"
	case errors.Is(err, domain.ErrPipelineBusy):
		status, code = http.StatusConflict, "PIPELINE_BUSY"
	case errors.Is(err, domain.ErrQueuePersistence):
		status, code = http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	}
	c.JSON(status, errorResponse{Code: code, Message: err.Error()})
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
