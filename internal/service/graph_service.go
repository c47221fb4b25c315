package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/graph"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GraphService struct {
	tasks   TaskRepository
	tags    TagRepository
	builder *graph.Builder
	now     func() time.Time
}

func NewGraphService(tasks TaskRepository, tags TagRepository, builder *graph.Builder) *GraphService {
	return &GraphService{
		tasks:   tasks,
		tags:    tags,
		builder: builder,
		now:     time.Now,
	}
}

func (s *GraphService) WithClock(now func() time.Time) *GraphService {
	s.now = now
	return s
}

// BuildGraph selects the owner's tasks by exact status and case-insensitive
// tag name, both optional, and renders them as a graph.
func (s *GraphService) BuildGraph(ctx context.Context, owner uuid.UUID, filterTag, filterStatus string) (graph.Graph, error) {
	start := time.Now()
	filterTag = strings.TrimSpace(filterTag)
	filterStatus = strings.TrimSpace(filterStatus)

	tasks, err := s.tasks.ListGraphTasks(ctx, owner, filterStatus, filterTag)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("loading graph tasks: %w", err)
	}

	usage, err := s.tags.TagUsage(ctx, owner, referencedTags(tasks))
	if err != nil {
		return graph.Graph{}, fmt.Errorf("loading tag usage: %w", err)
	}
	totalTasks, err := s.tasks.CountTasks(ctx, owner)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("counting tasks: %w", err)
	}
	totalTags, err := s.tags.CountTags(ctx, owner)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("counting tags: %w", err)
	}

	g := s.builder.Build(graph.Input{
		Tasks:      tasks,
		TagUsage:   usage,
		TotalTasks: totalTasks,
		TotalTags:  totalTags,
		Today:      task.DateOf(s.now()),
	})

	logger.Debug("Service: graph built",
		zap.String("owner_id", owner.String()),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
		zap.Duration("ms", time.Since(start)))
	return g, nil
}

func referencedTags(tasks []*task.Task) []uuid.UUID {
	var ids []uuid.UUID
	for _, t := range tasks {
		ids = append(ids, t.TagIDs()...)
	}
	return task.Unique(ids)
}
