package models

import "time"

// Student — запись ростера на стороне API. Идентичность задаёт серверный id,
// уникальность на клиенте не проверяем.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
