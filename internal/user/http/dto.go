package http

import (
	"bytes"
	"encoding/json"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/service"
)

// CreateRequest takes name and email as any JSON value. A value is present
// unless it is missing, null, false, 0 or "".
type CreateRequest struct {
	Name  json.RawMessage `json:"name"`
	Email json.RawMessage `json:"email"`
}

func (r CreateRequest) ToInput() service.CreateInput {
	return service.CreateInput{
		Name:  fieldText(r.Name),
		Email: fieldText(r.Email),
	}
}

// fieldText returns the text stored for a present value and "" otherwise.
// Non-string values keep their JSON spelling.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 {
			return ""
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

type UserDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type ServerInfoDTO struct {
	Timestamp      string `json:"timestamp"`
	Environment    string `json:"environment"`
	ServerLocation string `json:"serverLocation,omitempty"`
	ProcessingTime string `json:"processingTime,omitempty"`
}

type ListResponse struct {
	Users      []UserDTO     `json:"users"`
	ServerInfo ServerInfoDTO `json:"serverInfo"`
}

type CreateResponse struct {
	User       UserDTO       `json:"user"`
	Message    string        `json:"message"`
	ServerInfo ServerInfoDTO `json:"serverInfo"`
}

func ToUserDTO(u domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: clock.FormatISO(u.CreatedAt),
	}
}

func ToUserDTOs(users []domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out
}

func ToServerInfoDTO(info domain.ServerInfo) ServerInfoDTO {
	return ServerInfoDTO{
		Timestamp:      clock.FormatISO(info.Timestamp),
		Environment:    info.Environment,
		ServerLocation: info.ServerLocation,
		ProcessingTime: info.ProcessingTime,
	}
}
