package syncqueue

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/client/api"
)

// terminalPhrases mark rejections that will not change on retry. The backend
// answers in Portuguese or English.
var terminalPhrases = []string{
	"unauthorized",
	"não autorizado",
	"nao autorizado",
	"não tem permissão",
	"nao tem permissao",
	"sem permissão",
	"permission denied",
	"forbidden",
	"not found",
	"não encontrad",
	"nao encontrad",
}

// IsRetryable reports whether a failed delivery may succeed later. Auth,
// permission and missing-resource rejections are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden) || errors.Is(err, api.ErrNotFound) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range terminalPhrases {
		if strings.Contains(msg, p) {
			return false
		}
	}
	return true
}
