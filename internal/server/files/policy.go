package files

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

// AcceptancePolicy decides whether an upload may be stored, based on what
// the client declared about it. Rejections wrap common.ErrorRejected.
type AcceptancePolicy interface {
	Accept(filename, mimeType string) error
}

// AcceptAll accepts every payload regardless of its declared type.
type AcceptAll struct{}

func (AcceptAll) Accept(string, string) error { return nil }

// MIMEAllowList accepts a payload when its declared type starts with one of
// the listed prefixes, e.g. "image/" or "application/pdf".
type MIMEAllowList []string

func (l MIMEAllowList) Accept(_ string, mimeType string) error {
	mt := strings.ToLower(mimeType)
	for _, prefix := range l {
		if strings.HasPrefix(mt, strings.ToLower(prefix)) {
			return nil
		}
	}
	return fmt.Errorf("type %q: %w", mimeType, common.ErrorRejected)
}
