package service

import (
	"contentdesk/internal/repository"

	"go.uber.org/zap"
)

func logEmail(email string) zap.Field {
	return zap.String("email", repository.NormalizeEmail(email))
}

func logSession(id string) zap.Field {
	if len(id) > 8 {
		id = id[:8]
	}
	return zap.String("session", id)
}
