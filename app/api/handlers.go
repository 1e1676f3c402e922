package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/sportwire/app/pipeline"
	"github.com/lysyi3m/sportwire/app/store"
	"github.com/lysyi3m/sportwire/app/tasks"
)

func NewHandler(articleRepo store.ArticleRepository, metaRepo store.MetadataRepository,
	orchestrator *pipeline.Orchestrator, scheduler tasks.TaskSchedulerInterface,
	sourceCount int) *Handler {
	return &Handler{
		articleRepo:  articleRepo,
		metaRepo:     metaRepo,
		orchestrator: orchestrator,
		scheduler:    scheduler,
		sourceCount:  sourceCount,
	}
}

// GetArticles serves the full ranked document.
func (h *Handler) GetArticles(c *gin.Context) {
	document, err := store.BuildDocument(h.articleRepo, h.metaRepo)
	if err != nil {
		slog.Error("Failed to build document", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Article-Count", strconv.Itoa(len(document.Articles)))
	c.Header("X-Last-Updated", document.Metadata.LastUpdated.Format(time.RFC3339))

	c.JSON(http.StatusOK, document)
}

// GetArticlesByCategory serves the document scoped to one category.
// Unknown categories are a 404; the uncategorized bucket is never
// exposed as a view.
func (h *Handler) GetArticlesByCategory(c *gin.Context) {
	category := c.Param("category")

	known := false
	for _, name := range pipeline.Categories() {
		if name == category {
			known = true
			break
		}
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Unknown category",
			"categories": pipeline.Categories(),
		})
		return
	}

	document, err := store.BuildCategoryDocument(h.articleRepo, h.metaRepo, category)
	if err != nil {
		slog.Error("Failed to build category document", "category", category, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Article-Count", strconv.Itoa(len(document.Articles)))
	c.Header("X-Category", category)

	c.JSON(http.StatusOK, document)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   h.sourceCount,
	}

	if count, err := h.articleRepo.GetCount(); err == nil {
		health["articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

// GetStats reports store metadata plus the latest pipeline run.
func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if meta, err := h.metaRepo.Get(); err == nil {
		stats["metadata"] = meta
	} else {
		slog.Error("Failed to load metadata", "error", err)
	}

	if summary := h.orchestrator.LastSummary(); summary != nil {
		stats["last_run"] = summary
	}

	c.JSON(http.StatusOK, stats)
}

// TriggerRun enqueues an immediate pipeline run.
func (h *Handler) TriggerRun(c *gin.Context) {
	task := tasks.NewPipelineRunTask(h.orchestrator)

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue pipeline run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to enqueue pipeline run",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"task_id": task.GetID(),
	})
}
