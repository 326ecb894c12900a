package htmx

// Response headers.
const (
	HeaderHXLocation         = "HX-Location"
	HeaderHXPushURL          = "HX-Push-Url"
	HeaderHXRedirect         = "HX-Redirect"
	HeaderHXReplaceURL       = "HX-Replace-Url"
	HeaderHXRetarget         = "HX-Retarget"
	HeaderHXReswap           = "HX-Reswap"
	HeaderHXTriggerAfterSwap = "HX-Trigger-After-Swap"
)

// Request headers.
const (
	HeaderHXRequest               = "HX-Request"
	HeaderHXCurrentURL            = "HX-Current-URL"
	HeaderHXHistoryRestoreRequest = "HX-History-Restore-Request"
	HeaderHXTarget                = "HX-Target"
)
