package constant

// Scripted strategy globals - a Lua strategy file declares these to join the chain.
const (
	StrategyBackendVar  = "BACKEND"
	StrategyPriorityVar = "PRIORITY"
	StrategyFallbackVar = "FALLBACK"
	StrategyMatchFn     = "CanHandle"
)

// StrategyTemplate is a Go text/template for scaffolding new Lua strategy files.
const StrategyTemplate = `{{ $divider := repeat "-" (plus (max (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias item { path: string, name: string, fs_id: number, size: number, kind: string, mime: string|nil, codec: string|nil }


{{ .BackendVar }} = "{{ .Backend }}"
{{ .PriorityVar }} = {{ .Priority }}
{{ .FallbackVar }} = false


--- Decides whether {{ .Backend }} should attempt the item.
-- @param item item Metadata of the media item
-- @return boolean
function {{ .MatchFn }}(item)
	return false
end

-- ex: ts=4 sw=4 et filetype=lua
`
