package client

import "time"

// Client は求人を依頼する取引先エンティティです。削除は論理削除のみです。
type Client struct {
	ID            string
	Name          string
	Email         string
	ContactNumber string
	Active        bool
	PostedBy      *string
	PostedByName  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
