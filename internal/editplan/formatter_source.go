// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package editplan

import (
	"errors"
	"fmt"
)

// ErrFormatNotSupported is returned when a format type is not registered.
var ErrFormatNotSupported = errors.New("format not supported")

// ErrResultTooLarge is returned when a preview exceeds a format's capabilities.
var ErrResultTooLarge = errors.New("plan exceeds format capabilities")

// FormatRegistry maps format types to formatters and the capability
// limits that gate them.
type FormatRegistry struct {
	formatters   map[FormatType]Formatter
	capabilities map[FormatType]FormatCapability
}

// NewFormatRegistry creates a registry with every built-in formatter
// registered.
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{
		formatters:   make(map[FormatType]Formatter),
		capabilities: make(map[FormatType]FormatCapability),
	}

	r.Register(FormatJSON, NewJSONFormatter())
	r.Register(FormatUnifiedDiff, NewDiffFormatter())
	r.Register(FormatCompact, NewCompactFormatter())
	r.Register(FormatMermaid, NewMermaidFormatter(50))
	r.Register(FormatMarkdown, NewMarkdownFormatter())

	r.capabilities = map[FormatType]FormatCapability{
		FormatJSON:        {MaxFiles: 0, MaxHunks: 0, MaxTokens: 0, SupportsStreaming: true},
		FormatUnifiedDiff: {MaxFiles: 0, MaxHunks: 500, MaxTokens: 20000, SupportsStreaming: true},
		FormatCompact:     {MaxFiles: 0, MaxHunks: 0, MaxTokens: 50000, SupportsStreaming: false},
		FormatMermaid:     {MaxFiles: 100, MaxHunks: 0, MaxTokens: 5000, SupportsStreaming: false},
		FormatMarkdown:    {MaxFiles: 0, MaxHunks: 0, MaxTokens: 8000, SupportsStreaming: true},
	}

	return r
}

// Register registers a formatter for a format type, overwriting any
// existing registration.
func (r *FormatRegistry) Register(formatType FormatType, formatter Formatter) {
	r.formatters[formatType] = formatter
}

// GetFormatter returns the formatter for the given type.
func (r *FormatRegistry) GetFormatter(formatType FormatType) (Formatter, error) {
	f, ok := r.formatters[formatType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, formatType)
	}
	return f, nil
}

// ValidateCapability checks whether p fits within formatType's MaxFiles
// and MaxHunks limits. MaxTokens is not checked here.
func (r *FormatRegistry) ValidateCapability(p *Preview, formatType FormatType) error {
	cap, ok := r.capabilities[formatType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFormatNotSupported, formatType)
	}

	stats := AnalyzePreview(p)

	if cap.MaxFiles > 0 && stats.FileCount > cap.MaxFiles {
		return fmt.Errorf("%w: plan touches %d files, but %s format supports max %d. Use format=json or format=compact",
			ErrResultTooLarge, stats.FileCount, formatType, cap.MaxFiles)
	}

	if cap.MaxHunks > 0 && stats.HunkCount > cap.MaxHunks {
		return fmt.Errorf("%w: plan has %d hunks, but %s format supports max %d. Use format=json",
			ErrResultTooLarge, stats.HunkCount, formatType, cap.MaxHunks)
	}

	return nil
}

// Format renders p with formatType, after a capability check.
func (r *FormatRegistry) Format(p *Preview, formatType FormatType) (string, error) {
	f, err := r.GetFormatter(formatType)
	if err != nil {
		return "", err
	}

	if err := r.ValidateCapability(p, formatType); err != nil {
		return "", err
	}

	return f.Format(p)
}

// AutoSelectFormat picks the smallest format that fits within
// tokenBudget, preferring full fidelity when the plan is small.
func (r *FormatRegistry) AutoSelectFormat(p *Preview, tokenBudget int) FormatType {
	stats := AnalyzePreview(p)

	if stats.FileCount <= 3 {
		return FormatJSON
	}

	if stats.HunkCount <= 100 {
		return FormatUnifiedDiff
	}

	if tokenBudget > 0 {
		estimatedCompactTokens := stats.FileCount * 20
		if estimatedCompactTokens < tokenBudget {
			return FormatCompact
		}
	}

	return FormatMarkdown
}

// GetCapability returns the capability for a format type.
func (r *FormatRegistry) GetCapability(formatType FormatType) (FormatCapability, bool) {
	cap, ok := r.capabilities[formatType]
	return cap, ok
}

// ListFormats returns all registered format types.
func (r *FormatRegistry) ListFormats() []FormatType {
	formats := make([]FormatType, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	return formats
}

// GetMetadata returns metadata for a format type.
func (r *FormatRegistry) GetMetadata(formatType FormatType) (FormatMetadata, error) {
	f, err := r.GetFormatter(formatType)
	if err != nil {
		return FormatMetadata{}, err
	}

	note := ""
	if !f.IsReversible() {
		note = "Use format=json for full fidelity"
	}

	return FormatMetadata{
		Type:       formatType,
		Version:    FormatVersion,
		Reversible: f.IsReversible(),
		Note:       note,
	}, nil
}

// DefaultRegistry is the default format registry.
var DefaultRegistry = NewFormatRegistry()

// GetFormatter returns a formatter from the default registry.
func GetFormatter(formatType FormatType) (Formatter, error) {
	return DefaultRegistry.GetFormatter(formatType)
}

// Format formats a preview using the default registry.
func Format(p *Preview, formatType FormatType) (string, error) {
	return DefaultRegistry.Format(p, formatType)
}

// AutoSelectFormat selects a format using the default registry.
func AutoSelectFormat(p *Preview, tokenBudget int) FormatType {
	return DefaultRegistry.AutoSelectFormat(p, tokenBudget)
}
