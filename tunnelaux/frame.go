package tunnelaux

// passKind identifies one step of drawing a viewer frame.
type passKind uint8

const (
	passClear passKind = iota
	passLongitude
	passLatitude
	passTunnel
)

// drawPass is one step of a frame. depthWrite is the depth mask in effect
// during the pass; glClear honors the mask so the clear pass must write depth.
type drawPass struct {
	kind       passKind
	depthWrite bool
}

// framePasses returns the ordered passes of one frame for cfg. Opaque lines
// are drawn before the translucent tunnel walls, which do not write depth so
// they never hide each other.
func framePasses(dst []drawPass, cfg DisplayConfig) []drawPass {
	dst = append(dst[:0], drawPass{kind: passClear, depthWrite: true})
	if cfg.ShowLongitude {
		dst = append(dst, drawPass{kind: passLongitude, depthWrite: true})
	}
	if cfg.ShowLatitude {
		dst = append(dst, drawPass{kind: passLatitude, depthWrite: true})
	}
	if cfg.ShowTunnel {
		dst = append(dst, drawPass{kind: passTunnel, depthWrite: false})
	}
	return dst
}
