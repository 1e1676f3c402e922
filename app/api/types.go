package api

import (
	"github.com/lysyi3m/sportwire/app/pipeline"
	"github.com/lysyi3m/sportwire/app/store"
	"github.com/lysyi3m/sportwire/app/tasks"
)

type Handler struct {
	articleRepo  store.ArticleRepository
	metaRepo     store.MetadataRepository
	orchestrator *pipeline.Orchestrator
	scheduler    tasks.TaskSchedulerInterface
	sourceCount  int
}
