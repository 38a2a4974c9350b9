package database

import "social-network/internal/models"

// DefaultEmojis is the reference set the picker is seeded with. Upserted by
// shortcode so redeploys never duplicate rows.
func DefaultEmojis() []models.Emoji {
	return []models.Emoji{
		{Shortcode: ":smile:", Unicode: "\U0001F604", Category: "smileys", SortOrder: 1},
		{Shortcode: ":grin:", Unicode: "\U0001F601", Category: "smileys", SortOrder: 2},
		{Shortcode: ":joy:", Unicode: "\U0001F602", Category: "smileys", SortOrder: 3},
		{Shortcode: ":wink:", Unicode: "\U0001F609", Category: "smileys", SortOrder: 4},
		{Shortcode: ":heart_eyes:", Unicode: "\U0001F60D", Category: "smileys", SortOrder: 5},
		{Shortcode: ":thinking:", Unicode: "\U0001F914", Category: "smileys", SortOrder: 6},
		{Shortcode: ":cry:", Unicode: "\U0001F622", Category: "smileys", SortOrder: 7},
		{Shortcode: ":sob:", Unicode: "\U0001F62D", Category: "smileys", SortOrder: 8},
		{Shortcode: ":thumbsup:", Unicode: "\U0001F44D", Category: "gestures", SortOrder: 1},
		{Shortcode: ":thumbsdown:", Unicode: "\U0001F44E", Category: "gestures", SortOrder: 2},
		{Shortcode: ":clap:", Unicode: "\U0001F44F", Category: "gestures", SortOrder: 3},
		{Shortcode: ":wave:", Unicode: "\U0001F44B", Category: "gestures", SortOrder: 4},
		{Shortcode: ":pray:", Unicode: "\U0001F64F", Category: "gestures", SortOrder: 5},
		{Shortcode: ":heart:", Unicode: "❤️", Category: "symbols", SortOrder: 1},
		{Shortcode: ":fire:", Unicode: "\U0001F525", Category: "symbols", SortOrder: 2},
		{Shortcode: ":star:", Unicode: "⭐", Category: "symbols", SortOrder: 3},
		{Shortcode: ":tada:", Unicode: "\U0001F389", Category: "symbols", SortOrder: 4},
		{Shortcode: ":rocket:", Unicode: "\U0001F680", Category: "symbols", SortOrder: 5},
		{Shortcode: ":eyes:", Unicode: "\U0001F440", Category: "symbols", SortOrder: 6},
		{Shortcode: ":100:", Unicode: "\U0001F4AF", Category: "symbols", SortOrder: 7},
	}
}
