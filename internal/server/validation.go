package server

import (
	"strings"
	"sync"

	"who-said-that/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = engine.RegisterValidation("roomcode", func(fl validator.FieldLevel) bool {
			return game.ValidRoomCode(game.NormalizeRoomCode(fl.Field().String()))
		})
	})
}

var identityMessages = bindMessages{
	"ExternalID": {
		"required": "external_id is required",
		"notblank": "external_id is required",
		"max":      "external_id must be 64 characters or fewer",
	},
	"Name": {
		"max": "name must be 64 characters or fewer",
	},
}

var joinMessages = bindMessages{
	"RoomCode": {
		"required": "room_code is required",
		"roomcode": "room_code must be 6 letters or digits",
	},
	"ExternalID": identityMessages["ExternalID"],
	"Name":       identityMessages["Name"],
}

var questionMessages = bindMessages{
	"Text": {
		"required": "question is required",
	},
}

var answerMessages = bindMessages{
	"RoundID": {
		"required": "round_id is required",
	},
	"AuthorID": {
		"required": "author_id is required",
	},
	"Text": {
		"required": "answer is required",
	},
}

var revealMessages = bindMessages{
	"RoundID":  {"required": "round_id is required"},
	"AnswerID": {"required": "answer_id is required"},
	"ActorID":  {"required": "actor_id is required"},
}

var closeRoomMessages = bindMessages{
	"ActorID": {"required": "actor_id is required"},
}

var roundQueryMessages = bindMessages{
	"RoundID": {
		"required": "round_id is required",
		"min":      "round_id is required",
	},
}

var eventQueryMessages = bindMessages{
	"Limit": {
		"min": "limit must be at least 1",
		"max": "limit must be 200 or fewer",
	},
}
