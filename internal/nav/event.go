// Package nav is the page/stack state machine. It batches input actions,
// maps them to semantic navigation events, executes page and stack changes
// itself and queues in-screen events for the active screen.
package nav

// Event is a semantic navigation event.
type Event int

const (
	None Event = iota
	SelectUp
	SelectDown
	SelectLeft
	SelectRight
	Confirm
	Back
	PagePrev
	PageNext
	OpenSettings
	CloseSettings
	GoHome
	ForceRefresh
	QuickAction
)

var eventNames = [...]string{
	None:          "NONE",
	SelectUp:      "SELECT_UP",
	SelectDown:    "SELECT_DOWN",
	SelectLeft:    "SELECT_LEFT",
	SelectRight:   "SELECT_RIGHT",
	Confirm:       "CONFIRM",
	Back:          "BACK",
	PagePrev:      "PAGE_PREV",
	PageNext:      "PAGE_NEXT",
	OpenSettings:  "OPEN_SETTINGS",
	CloseSettings: "CLOSE_SETTINGS",
	GoHome:        "GO_HOME",
	ForceRefresh:  "FORCE_REFRESH",
	QuickAction:   "QUICK_ACTION",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// IsSelect reports whether e only moves the cursor.
func (e Event) IsSelect() bool {
	return e >= SelectUp && e <= SelectRight
}

// IsPageLevel reports whether e changes the visible page or stack instead
// of going to the active screen.
func (e Event) IsPageLevel() bool {
	return e >= PagePrev && e <= GoHome
}

// Stack selects one of the two page groups.
type Stack int

const (
	StackMain Stack = iota
	StackSettings
)

func (s Stack) String() string {
	if s == StackSettings {
		return "SETTINGS"
	}
	return "MAIN"
}

// PageID identifies a screen.
type PageID int

const (
	PageHome PageID = iota
	PageLights
	PageClimate
	PageSensors
	PageMessages
	PageAgenda

	PageDevice
	PageDisplay
	PageController

	// PageError is not part of either stack; it is shown after a hardware
	// fault.
	PageError
)

var pageNames = map[PageID]string{
	PageHome:       "Home",
	PageLights:     "Lights",
	PageClimate:    "Climate",
	PageSensors:    "Sensors",
	PageMessages:   "Messages",
	PageAgenda:     "Agenda",
	PageDevice:     "Device",
	PageDisplay:    "Display",
	PageController: "Controller",
	PageError:      "Error",
}

func (p PageID) String() string {
	if n, ok := pageNames[p]; ok {
		return n
	}
	return "Unknown"
}

// MainPages and SettingsPages are the ordered page enumerations of each
// stack. Cycling wraps in both directions.
var (
	MainPages     = []PageID{PageHome, PageLights, PageClimate, PageSensors, PageMessages, PageAgenda}
	SettingsPages = []PageID{PageDevice, PageDisplay, PageController}
)

// Pages returns the enumeration of s.
func Pages(s Stack) []PageID {
	if s == StackSettings {
		return SettingsPages
	}
	return MainPages
}

// StackOf finds the stack and index of id.
func StackOf(id PageID) (Stack, int, bool) {
	for i, p := range MainPages {
		if p == id {
			return StackMain, i, true
		}
	}
	for i, p := range SettingsPages {
		if p == id {
			return StackSettings, i, true
		}
	}
	return StackMain, 0, false
}
