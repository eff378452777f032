package packet

// State is the packet lifecycle state. CONFIG_DONE is not terminal; it can be
// reconfigured indefinitely through the management path.
type State string

const (
	StateSetupPending  State = "setup_pending"
	StateSetupDone     State = "setup_done"
	StateConfigPending State = "config_pending"
	StateConfigDone    State = "config_done"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateSetupPending, StateSetupDone, StateConfigPending, StateConfigDone:
		return true
	default:
		return false
	}
}

// IsSold reports whether the packet has passed the sale transition.
func (s State) IsSold() bool {
	return s == StateConfigPending || s == StateConfigDone
}

// Path classifies which URL namespace a scan arrived on. It is determined by
// the route, never by the identifier's content.
type Path string

const (
	PathMain       Path = "main"
	PathManagement Path = "management"
)

func (p Path) String() string {
	return string(p)
}
