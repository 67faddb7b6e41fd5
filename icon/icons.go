package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Warn
	Video
	Image
	Play
	Pause
	Handover
	Driving
	Lua
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "OK",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(°ロ°)",
		squares: "🟧",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "V",
		kaomoji: "(▭▭)",
		squares: "🟦",
	},
	Image: {
		emoji:   "🖼️",
		nerd:    "",
		plain:   "I",
		kaomoji: "[◕‿◕]",
		squares: "🟪",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(>‿<)",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(-_-)zz",
		squares: "⬜",
	},
	Handover: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "<>",
		kaomoji: "(つ°ヮ°)つ",
		squares: "🟫",
	},
	Driving: {
		emoji:   "🚗",
		nerd:    "",
		plain:   "D",
		kaomoji: "(⌐■_■)",
		squares: "⬛",
	},
	Lua: {
		emoji:   "🌙",
		nerd:    "",
		plain:   "Lua",
		kaomoji: "(◕ᴥ◕)",
		squares: "🟦",
	},
}
