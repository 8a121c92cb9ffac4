package asset

import (
	"bytes"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Status of one entry in a load report.
type Status string

const (
	StatusLoaded   Status = "loaded"
	StatusMissing  Status = "missing"
	StatusFallback Status = "fallback"
	StatusFailed   Status = "failed"
)

// ReportEntry describes how one resource settled.
type ReportEntry struct {
	Kind     string
	Resource string
	Status   Status
	Detail   string
}

// Report collects the outcome of an initialization pass.
type Report struct {
	Entries []ReportEntry
}

func (r *Report) Add(kind, resource string, status Status, detail string) {
	r.Entries = append(r.Entries, ReportEntry{Kind: kind, Resource: resource, Status: status, Detail: detail})
}

// AddTextures records one entry per texture attempt.
func (r *Report) AddTextures(results []TextureResult) {
	for _, tr := range results {
		switch {
		case tr.Err != nil:
			r.Add("texture:"+string(tr.Role), tr.Location, StatusMissing, tr.Err.Error())
		default:
			r.Add("texture:"+string(tr.Role), tr.Location, StatusLoaded, tr.Texture.ColorSpace.String())
		}
	}
}

// Render writes the report as a table.
func (r *Report) Render(w io.Writer) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Asset", "Resource", "Status", "Detail"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, e := range r.Entries {
		table.Append([]string{e.Kind, e.Resource, string(e.Status), e.Detail})
	}
	table.Render()
	_, err := w.Write(buf.Bytes())
	return err
}

func (r *Report) String() string {
	var buf bytes.Buffer
	_ = r.Render(&buf)
	return buf.String()
}
