package models

import "time"

// MaxPostStrLength is how much of the text String() shows.
const MaxPostStrLength = 15

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"` // publication date
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Author    User      `json:"author" gorm:"constraint:OnDelete:CASCADE"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	Group     *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Image     string    `json:"image,omitempty" gorm:"size:255"` // media storage key
	Comments  []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > MaxPostStrLength {
		runes = runes[:MaxPostStrLength]
	}
	return string(runes)
}

// PostForm is the body of the create and edit forms. Group is optional,
// zero means the post is not published into any group.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group uint   `form:"group"`
}
