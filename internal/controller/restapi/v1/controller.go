package v1

import (
	"github.com/AppFriend/DrGolly-sub001/internal/usecase"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
)

type V1 struct {
	events usecase.EventsUseCase
	logger logger.Interface
}
