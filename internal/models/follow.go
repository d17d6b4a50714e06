package models

import "time"

// Follow is a subscription of User to the posts of Author. A pair can exist
// only once and nobody follows themselves; both rules live in the schema.
type Follow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:unique_follow;check:chk_follow_not_self,user_id <> author_id"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index;uniqueIndex:unique_follow"`
	Author    User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
