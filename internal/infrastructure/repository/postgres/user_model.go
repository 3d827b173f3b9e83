package postgres

import (
	"time"

	"github.com/loolazoola/epl-sub001/internal/domain/user"
)

type userTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	TotalPoints int       `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		TotalPoints: m.TotalPoints,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
