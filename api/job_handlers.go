package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

// ListJobsHandler lists the periodic sweep jobs and their status
func (api *API) ListJobsHandler(c *gin.Context) {
	jobs := api.jobs.Jobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"metrics": api.jobs.GetMetrics()})
}

// RunJobHandler runs a sweep immediately and reports how many entries it removed
func (api *API) RunJobHandler(c *gin.Context) {
	jobType := c.Param("jobType")

	removed, err := api.jobs.RunNow(model.JobType(jobType))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			SendJobNotFoundError(c, jobType)
			return
		}
		SendInternalError(c, "run "+jobType+" job", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":     jobType,
		"removed": removed,
	})
}
