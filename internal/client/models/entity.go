package models

import (
	"fmt"
	"strings"
)

// Entity names a domain entity kind.
type Entity string

const (
	EntityWorkspace  Entity = "workspace"
	EntityTask       Entity = "task"
	EntityCategory   Entity = "category"
	EntityComment    Entity = "comment"
	EntityAttachment Entity = "attachment"
	EntityUser       Entity = "user"
)

// entityAliases maps the backend's Portuguese resource names onto entities.
var entityAliases = map[string]Entity{
	"workspace":  EntityWorkspace,
	"workspaces": EntityWorkspace,
	"task":       EntityTask,
	"tasks":      EntityTask,
	"tarefa":     EntityTask,
	"tarefas":    EntityTask,
	"category":   EntityCategory,
	"categories": EntityCategory,
	"categoria":  EntityCategory,
	"categorias": EntityCategory,
	"comment":    EntityComment,
	"comments":   EntityComment,
	"comentario": EntityComment,
	"comentário": EntityComment,
	"attachment": EntityAttachment,
	"anexo":      EntityAttachment,
	"anexos":     EntityAttachment,
	"user":       EntityUser,
	"usuario":    EntityUser,
	"usuário":    EntityUser,
}

// ParseEntity normalises an entity name, accepting backend aliases.
func ParseEntity(s string) (Entity, error) {
	e, ok := entityAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown entity %q", s)
	}
	return e, nil
}
