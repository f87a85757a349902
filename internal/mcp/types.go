package mcp

import "github.com/1broseidon/wlshell/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Outputs         int   `json:"outputs"`
	Windows         int   `json:"windows"`
	Fullscreen      int   `json:"fullscreen"`
	PlacedWindows   int   `json:"placed_windows"`
	PendingBlockers int   `json:"pending_blockers"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
}

// ListOutputsInput is the input for the list_outputs tool.
type ListOutputsInput struct {
	Name string `json:"name,omitempty" jsonschema:"Only report the output with this name"`
}

// ListOutputsOutput is the output for the list_outputs tool.
type ListOutputsOutput struct {
	Outputs []ipc.OutputInfo `json:"outputs"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Output string `json:"output,omitempty" jsonschema:"Only report windows visible on this output"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// FixupPositionsInput is the input for the fixup_positions tool.
type FixupPositionsInput struct{}

// FixupPositionsOutput is the output for the fixup_positions tool.
type FixupPositionsOutput struct {
	Moved []uint32 `json:"moved"`
}

// MapWindowInput is the input for the map_window tool.
type MapWindowInput struct {
	Title    string   `json:"title,omitempty" jsonschema:"Window title"`
	Width    int      `json:"width" jsonschema:"required,Buffer width in pixels"`
	Height   int      `json:"height" jsonschema:"required,Buffer height in pixels"`
	PointerX *float64 `json:"pointer_x,omitempty" jsonschema:"Move the pointer to this x before placing, which selects the output the window lands on"`
	PointerY *float64 `json:"pointer_y,omitempty" jsonschema:"Move the pointer to this y before placing"`
}

// MapWindowOutput is the output for the map_window tool.
type MapWindowOutput struct {
	Window ipc.WindowInfo `json:"window"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	ID uint32 `json:"id" jsonschema:"required,Window ID as reported by list_windows"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID     uint32 `json:"id"`
	Closed bool   `json:"closed"`
}

// AddOutputInput is the input for the add_output tool.
type AddOutputInput struct {
	Name   string `json:"name" jsonschema:"required,Output name. An existing output with this name is resized."`
	Width  int    `json:"width" jsonschema:"required,Mode width in pixels"`
	Height int    `json:"height" jsonschema:"required,Mode height in pixels"`
}

// AddOutputOutput is the output for the add_output tool.
type AddOutputOutput struct {
	Output ipc.OutputInfo `json:"output"`
}

// RemoveOutputInput is the input for the remove_output tool.
type RemoveOutputInput struct {
	Name string `json:"name" jsonschema:"required,Output name"`
}

// RemoveOutputOutput is the output for the remove_output tool.
type RemoveOutputOutput struct {
	Name    string `json:"name"`
	Removed bool   `json:"removed"`
}
