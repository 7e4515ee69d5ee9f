package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Tutorial struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Topic     string    `gorm:"type:text;not null" json:"topic"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Tutorial) TableName() string {
	return "tutorials"
}

type Step struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	TutorialID string    `gorm:"type:text;not null;uniqueIndex:idx_steps_tutorial_order,priority:1" json:"tutorial_id"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Command    *string   `gorm:"type:text" json:"command,omitempty"` // Nullable
	StepOrder  int       `gorm:"not null;uniqueIndex:idx_steps_tutorial_order,priority:2" json:"step_order"`
	Messages   []Message `gorm:"foreignKey:StepID" json:"messages"`
}

func (Step) TableName() string {
	return "steps"
}

type Message struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	StepID    string    `gorm:"type:text;not null;index" json:"step_id"`
	Role      string    `gorm:"type:text;not null" json:"role"` // "user" or "assistant"
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
