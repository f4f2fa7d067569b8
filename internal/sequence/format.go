package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultTemplate = "{PREFIX}{SEQ5}"

// Format renders an invoice number from template. Supported tokens are
// {PREFIX}, {YYYY}, {YY}, {MM}, {DD}, {SEQ} and {SEQn} (zero padded to n).
func Format(template, prefix string, at time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ierr.NewError("invoice number template is empty").Mark(ierr.ErrValidation)
	}
	if seq <= 0 {
		return "", ierr.NewErrorf("invalid invoice sequence: %d", seq).Mark(ierr.ErrValidation)
	}

	out := strings.ReplaceAll(template, "{PREFIX}", prefix)
	out = strings.ReplaceAll(out, "{YYYY}", at.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", at.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", at.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", at.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", ierr.NewErrorf("unresolved token in invoice number template: %s", out).Mark(ierr.ErrValidation)
	}
	return out, nil
}
