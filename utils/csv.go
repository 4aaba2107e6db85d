package utils

import (
	"encoding/csv"
	"os"
	"strings"

	"mailsift/verifier"
)

// Column order and header names are a compatibility contract for downstream
// consumers; reasons are semicolon-joined.
var (
	resultHeader  = []string{"email", "verdict", "active_status", "reasons"}
	perFileHeader = []string{"filename", "email", "verdict", "active_status", "reasons"}
)

// WriteResultsCSV writes the combined verdict artifact for a job.
func WriteResultsCSV(path string, results []verifier.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write([]string{res.Email, res.Verdict, res.ActiveStatus, joinReasons(res)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WritePerFileCSV writes the per-source-file variant with a filename column.
func WritePerFileCSV(path, filename string, results []verifier.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(perFileHeader); err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write([]string{filename, res.Email, res.Verdict, res.ActiveStatus, joinReasons(res)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func joinReasons(res verifier.Result) string {
	return strings.Join(res.Reasons, ";")
}
