// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package report exports audit reports as JSON and plain-text files and
// renders terminal summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/poiesic/veridoc/core"
)

// Default filenames within the output directory.
const (
	JSONFilename = "audit_report.json"
	TextFilename = "audit_report.txt"
)

const evidenceLimit = 100

// Save writes both report formats under dir, creating it as needed, and
// returns the written paths (JSON first).
func Save(report *core.AuditReport, dir string) ([]string, error) {
	jsonPath, err := SaveJSON(report, dir)
	if err != nil {
		return nil, err
	}
	textPath, err := SaveText(report, dir)
	if err != nil {
		return nil, err
	}
	return []string{jsonPath, textPath}, nil
}

// SaveFor writes both report formats under dir with filenames derived
// from the audited document ("audit_<name>.json" and "audit_<name>.txt"),
// so reports for different documents do not overwrite each other.
func SaveFor(report *core.AuditReport, dir, documentName string) ([]string, error) {
	jsonPath := JSONPathFor(dir, documentName)
	if err := WriteJSON(report, jsonPath); err != nil {
		return nil, err
	}
	textPath := TextPathFor(dir, documentName)
	if err := WriteText(report, textPath); err != nil {
		return nil, err
	}
	return []string{jsonPath, textPath}, nil
}

// JSONPathFor returns the per-document JSON report path under dir.
func JSONPathFor(dir, documentName string) string {
	return filepath.Join(dir, reportBasename(documentName)+".json")
}

// TextPathFor returns the per-document text report path under dir.
func TextPathFor(dir, documentName string) string {
	return filepath.Join(dir, reportBasename(documentName)+".txt")
}

// reportBasename strips the document extension and prefixes "audit_".
func reportBasename(documentName string) string {
	name := filepath.Base(documentName)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return "audit_" + name
}

// SaveJSON writes the report as indented JSON to dir/audit_report.json.
func SaveJSON(report *core.AuditReport, dir string) (string, error) {
	path := filepath.Join(dir, JSONFilename)
	if err := WriteJSON(report, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSON writes the report as indented JSON to path.
func WriteJSON(report *core.AuditReport, path string) error {
	if report == nil {
		return ErrNilReport
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return writeFile(path, data)
}

// SaveText writes a human-readable report to dir/audit_report.txt.
func SaveText(report *core.AuditReport, dir string) (string, error) {
	path := filepath.Join(dir, TextFilename)
	if err := WriteText(report, path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteText writes the human-readable report to path.
func WriteText(report *core.AuditReport, path string) error {
	if report == nil {
		return ErrNilReport
	}

	banner := strings.Repeat("=", 70)
	divider := strings.Repeat("-", 70)

	lines := []string{
		banner,
		"AUDIT REPORT",
		banner,
		fmt.Sprintf("Document: %s", report.Document),
		fmt.Sprintf("Total Criteria: %d", report.TotalCriteria),
		fmt.Sprintf("Present: %d", report.CriteriaPresent),
		fmt.Sprintf("Absent: %d", report.CriteriaAbsent),
		fmt.Sprintf("Compliance Rate: %.2f%%", report.ComplianceRate),
		"",
		divider,
		"DETAILED RESULTS",
		divider,
	}

	for n, result := range report.Results {
		evidence := result.Evidence
		if runes := []rune(evidence); len(runes) > evidenceLimit {
			evidence = string(runes[:evidenceLimit]) + "..."
		}
		lines = append(lines,
			fmt.Sprintf("\n%d. %s", n+1, result.Criterion),
			fmt.Sprintf("   Status: %s", result.Status),
			fmt.Sprintf("   Confidence: %.0f%%", result.Confidence*100),
			fmt.Sprintf("   Pages: %s", joinPages(result.Pages)),
			fmt.Sprintf("   Evidence: %s", evidence),
		)
	}
	lines = append(lines, "\n"+banner)

	return writeFile(path, []byte(strings.Join(lines, "\n")))
}

// Summary renders the report as a fixed-width table for terminal output.
func Summary(report *core.AuditReport) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", report.Document)
	fmt.Fprintf(&b, "Present: %d | Absent: %d | Compliance Rate: %.2f%%\n\n",
		report.CriteriaPresent, report.CriteriaAbsent, report.ComplianceRate)

	fmt.Fprintf(&b, "%-3s  %-8s  %-40s  %-45s  %-10s  %s\n",
		"#", "Status", "Criterion", "Evidence", "Pages", "Conf.")

	for n, result := range report.Results {
		fmt.Fprintf(&b, "%-3d  %-8s  %-40s  %-45s  %-10s  %.0f%%\n",
			n+1,
			result.Status,
			clipCell(result.Criterion, 40),
			clipCell(result.Evidence, 45),
			summaryPages(result.Pages),
			result.Confidence*100)
	}
	return b.String()
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func joinPages(pages []int) string {
	if len(pages) == 0 {
		return "N/A"
	}
	parts := make([]string, len(pages))
	for n, page := range pages {
		parts[n] = strconv.Itoa(page)
	}
	return strings.Join(parts, ", ")
}

// summaryPages shows at most three pages in table cells.
func summaryPages(pages []int) string {
	if len(pages) == 0 {
		return "-"
	}
	shown := pages
	if len(shown) > 3 {
		shown = shown[:3]
	}
	parts := make([]string, len(shown))
	for n, page := range shown {
		parts[n] = strconv.Itoa(page)
	}
	joined := strings.Join(parts, ", ")
	if len(pages) > 3 {
		joined += "..."
	}
	return joined
}

// clipCell truncates text to width runes, marking the cut with an
// ellipsis.
func clipCell(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
