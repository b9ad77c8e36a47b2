package domain

import (
	"database/sql/driver"
	"errors"

	"github.com/goccy/go-json"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
// It backs the reply thread of a comment; order is preserved exactly.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Rows written by the legacy application hold a list literal such as
// ['a', "b's"]; those are decoded by a literal parser, never evaluated.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	if len(bytes) == 0 {
		*a = StringArray{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		legacy, lerr := ParseListLiteral(string(bytes))
		if lerr != nil {
			return err
		}
		out = legacy
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// Comment is a single free-text statement together with its thread, votes and
// the theme assigned by the most recent classification run.
//
// ThemeID is nil until the comment has been classified. ThemeID, ThemeName, X
// and Y are only meaningful together: they always come from the same run.
type Comment struct {
	ID        int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Text      string      `gorm:"column:comment;type:text" json:"comment"`
	Replies   StringArray `gorm:"column:reply;type:text" json:"replies"`
	Upvotes   int         `gorm:"column:upvotes;not null;default:0" json:"upvotes"`
	ThemeID   *int        `gorm:"column:theme" json:"theme_id"`
	ThemeName string      `gorm:"column:theme_name;type:text" json:"theme_name"`
	X         float64     `gorm:"column:x" json:"x"`
	Y         float64     `gorm:"column:y" json:"y"`
}

// TableName returns the database table name for Comment.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Comment) TableName() string {
	return "comments"
}

// Classified reports whether the comment carries a theme from some run.
func (c *Comment) Classified() bool {
	return c.ThemeID != nil
}

// Clone returns a deep copy so callers can mutate without aliasing replies.
func (c *Comment) Clone() *Comment {
	out := *c
	if c.Replies != nil {
		out.Replies = append(StringArray{}, c.Replies...)
	}
	if c.ThemeID != nil {
		id := *c.ThemeID
		out.ThemeID = &id
	}
	return &out
}

// ThemeAssignment is the per-comment output of a classification run.
type ThemeAssignment struct {
	CommentID int64
	ThemeID   *int
	ThemeName string
	X         float64
	Y         float64
}

// Apply copies the assignment onto the comment.
func (t ThemeAssignment) Apply(c *Comment) {
	c.ThemeID = t.ThemeID
	c.ThemeName = t.ThemeName
	c.X = t.X
	c.Y = t.Y
}

// IntPtr is a small helper for optional theme ids.
func IntPtr(v int) *int {
	return &v
}
