// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/qtox/internal/color"
)

const (
	bannerWidth  = 50 // Inner width including padding
	okIndent     = 36
	failedIndent = 26

	okText     = "O K   : )"
	failedText = "F A I L E D !   :("
)

var bannerBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "-",
	TopRight:    "-",
	BottomLeft:  "-",
	BottomRight: "-",
}

var bannerStyle = lipgloss.NewStyle().
	Border(bannerBorder).
	Padding(0, 1).
	Width(bannerWidth)

// envBanner renders the box written at the top of every sink.
// The box grows to fit a long display name instead of wrapping it.
func envBanner(display string) string {
	width := max(bannerWidth, lipgloss.Width(display)+bannerStyle.GetHorizontalPadding())
	return bannerStyle.Width(width).Render(display)
}

// resultBanner is the line printed once the session has been torn down.
func resultBanner(status int) string {
	if status == 0 {
		return strings.Repeat(" ", okIndent) + color.Colorize(okText, color.FgHiGreen, color.Bold)
	}

	return strings.Repeat(" ", failedIndent) + color.Colorize(failedText, color.FgHiRed, color.Bold)
}
