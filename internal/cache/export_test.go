package cache

var (
	SetScript        = setScript
	InvalidateScript = invalidateScript
)
