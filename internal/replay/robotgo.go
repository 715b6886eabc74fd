package replay

import (
	"github.com/go-vgo/robotgo"
	"github.com/juju/errors"
)

// robotInjector adapts robotgo to the Injector interface. robotgo reports
// failures as non-empty strings.
type robotInjector struct{}

func NewRobotInjector() Injector { return robotInjector{} }

func (robotInjector) KeyToggle(key, direction string) error {
	if s := robotgo.KeyToggle(key, direction); s != "" {
		return errors.Errorf("robotgo key toggle %s %s: %s", key, direction, s)
	}
	return nil
}

func (robotInjector) ButtonToggle(button, direction string) error {
	robotgo.MouseToggle(direction, button)
	return nil
}

func (robotInjector) MoveRelative(dx, dy int) {
	robotgo.MoveRelative(dx, dy)
}

func (robotInjector) Scroll(dx, dy int) {
	robotgo.Scroll(dx, dy)
}
