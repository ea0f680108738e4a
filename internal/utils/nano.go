package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Report IDs end up in dashboard URLs, so the alphabet avoids characters
// that are easy to misread when an NGO reads one out over the phone.
const (
	ReportIDPrefix = "rpt_"
	reportIDSize   = 16
	draftTokenSize = 21
	idAlphabet     = "23456789abcdefghjkmnpqrstuvwxyz"
)

func ReportID() string {
	return ReportIDPrefix + NanoIDSize(reportIDSize)
}

func NanoIDSize(size int) string {
	if size <= 0 {
		size = reportIDSize
	}

	return gonanoid.MustGenerate(idAlphabet, size)
}

// DraftToken identifies one report form between its submissions.
func DraftToken() string {
	return NanoIDSize(draftTokenSize)
}

// IsReportID reports whether id has the shape produced by ReportID.
func IsReportID(id string) bool {
	body, ok := strings.CutPrefix(id, ReportIDPrefix)
	return ok && isNanoID(body, reportIDSize)
}

func IsDraftToken(token string) bool {
	return isNanoID(token, draftTokenSize)
}

func isNanoID(s string, size int) bool {
	if len(s) != size {
		return false
	}

	for _, c := range s {
		if !strings.ContainsRune(idAlphabet, c) {
			return false
		}
	}

	return true
}
