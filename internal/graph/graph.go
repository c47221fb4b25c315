// Package graph turns a user's tasks and tags into a vis-network style
// node/edge payload.
package graph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/models/tag"
	"taskManager/internal/models/task"

	"github.com/google/uuid"
)

const (
	BaseTagSize    = 15
	TagSizePerTask = 3
	MaxTagSize     = 50

	darkenOffset = 40

	fontNormal  = "#333333"
	fontOverdue = "#cc0000"
)

type NodeColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

type Font struct {
	Color string `json:"color"`
}

type Node struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Group       string    `json:"group"`
	Shape       string    `json:"shape"`
	Color       NodeColor `json:"color"`
	Title       string    `json:"title"`
	BorderWidth int       `json:"borderWidth,omitempty"`
	Font        *Font     `json:"font,omitempty"`
	Size        int       `json:"size,omitempty"`
}

type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Width int    `json:"width"`
	Color string `json:"color"`
}

type Stats struct {
	TotalTasks    int `json:"total_tasks"`
	TotalTags     int `json:"total_tags"`
	FilteredTasks int `json:"filtered_tasks"`
	FilteredTags  int `json:"filtered_tags"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

var statusColors = map[task.Status]NodeColor{
	task.StatusTodo:       {Background: "#e3f2fd", Border: "#2196f3"},
	task.StatusInProgress: {Background: "#fff8e1", Border: "#ff9800"},
	task.StatusDone:       {Background: "#e8f5e9", Border: "#4caf50"},
}

var priorityBorderWidth = map[task.Priority]int{
	task.PriorityHigh:   3,
	task.PriorityMedium: 2,
	task.PriorityLow:    1,
}

var priorityEdgeWidth = map[task.Priority]int{
	task.PriorityHigh:   3,
	task.PriorityMedium: 2,
	task.PriorityLow:    1,
}

var priorityEdgeColor = map[task.Priority]string{
	task.PriorityHigh:   "#ff9800",
	task.PriorityMedium: "#999999",
	task.PriorityLow:    "#cccccc",
}

// Input is everything Build needs; gathering it is the caller's job.
type Input struct {
	// Tasks already filtered and ordered, with their tags loaded.
	Tasks []*task.Task
	// TagUsage counts the owner's tasks per tag, ignoring any filter.
	TagUsage   map[uuid.UUID]int
	TotalTasks int
	TotalTags  int
	Today      time.Time
}

type Builder struct {
	palette tag.Palette
}

func NewBuilder(palette tag.Palette) *Builder {
	return &Builder{palette: palette}
}

func (b *Builder) Build(in Input) Graph {
	taskNodes := make([]Node, 0, len(in.Tasks))
	edges := []Edge{}
	seen := make(map[uuid.UUID]*tag.Tag)

	for _, t := range in.Tasks {
		taskID := "task-" + t.ID.String()
		overdue := t.IsOverdue(in.Today)

		color, ok := statusColors[t.Status]
		if !ok {
			color = statusColors[task.StatusTodo]
		}
		font := &Font{Color: fontNormal}
		if overdue {
			font.Color = fontOverdue
		}
		borderWidth, ok := priorityBorderWidth[t.Priority]
		if !ok {
			borderWidth = 2
		}

		taskNodes = append(taskNodes, Node{
			ID:          taskID,
			Label:       t.Title,
			Group:       string(t.Status),
			Shape:       "box",
			Color:       color,
			Title:       tooltip(t, overdue),
			BorderWidth: borderWidth,
			Font:        font,
		})

		for _, tg := range t.Tags {
			edges = append(edges, edgeFor(taskID, tg, t.Priority))
			seen[tg.ID] = tg
		}
	}

	tagNodes := make([]Node, 0, len(seen))
	for _, tg := range sortedTags(seen) {
		count := in.TagUsage[tg.ID]
		background := tg.Color
		if !tag.IsHexColor(background) {
			background = b.palette.Default()
		}
		tagNodes = append(tagNodes, Node{
			ID:    "tag-" + tg.ID.String(),
			Label: tg.Name,
			Group: "tag",
			Shape: "ellipse",
			Color: NodeColor{Background: background, Border: DarkenHex(background)},
			Title: taskCountLabel(count),
			Size:  TagSize(count),
		})
	}

	return Graph{
		Nodes: append(taskNodes, tagNodes...),
		Edges: edges,
		Stats: Stats{
			TotalTasks:    in.TotalTasks,
			TotalTags:     in.TotalTags,
			FilteredTasks: len(taskNodes),
			FilteredTags:  len(tagNodes),
		},
	}
}

func edgeFor(taskID string, tg *tag.Tag, p task.Priority) Edge {
	width, ok := priorityEdgeWidth[p]
	if !ok {
		width = 1
	}
	color, ok := priorityEdgeColor[p]
	if !ok {
		color = "#999999"
	}
	return Edge{From: taskID, To: "tag-" + tg.ID.String(), Width: width, Color: color}
}

func tooltip(t *task.Task, overdue bool) string {
	parts := []string{"Priority: " + string(t.Priority)}
	if t.DueDate != nil {
		due := "Due: " + t.DueDate.Format(time.DateOnly)
		if overdue {
			due += " ⚠ OVERDUE"
		}
		parts = append(parts, due)
	}
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tg := range t.Tags {
			names = append(names, tg.Name)
		}
		parts = append(parts, "Tags: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "\n")
}

func taskCountLabel(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

func TagSize(taskCount int) int {
	return min(BaseTagSize+taskCount*TagSizePerTask, MaxTagSize)
}

// DarkenHex lowers every channel by a fixed offset, floored at zero.
func DarkenHex(hex string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return hex
	}
	r := max(int(v>>16&0xff)-darkenOffset, 0)
	g := max(int(v>>8&0xff)-darkenOffset, 0)
	b := max(int(v&0xff)-darkenOffset, 0)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
