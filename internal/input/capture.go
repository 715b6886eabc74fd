package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	inputevent "github.com/temoto/inputevent-go"
	"golang.org/x/sys/unix"

	"github.com/softkvm/softkvm/helpers"
	"github.com/softkvm/softkvm/log2"
)

const DefaultDeviceDir = "/dev/input"

// Capture owns every open device handle. Devices are opened for
// monitoring as soon as they are found eligible (the toggle key must be
// seen while relay is off); GrabAll/ReleaseAll switch the kernel-level
// exclusive grab on those same handles. Nothing else may close them.
type Capture struct {
	alive  *alive.Alive
	log    *log2.Log
	dir    string
	events chan RawEvent

	mu      sync.Mutex
	devices map[string]*captureDevice
}

type captureDevice struct {
	path    string
	dev     *evdev.InputDevice
	grabbed bool
}

func NewCapture(a *alive.Alive, log *log2.Log, dir string) *Capture {
	if dir == "" {
		dir = DefaultDeviceDir
	}
	return &Capture{
		alive:   a,
		log:     log,
		dir:     dir,
		events:  make(chan RawEvent, 64),
		devices: make(map[string]*captureDevice, 16),
	}
}

func (c *Capture) Events() <-chan RawEvent { return c.events }

// EnumerateEligible returns capture-worthy device paths in lexicographic
// order so the grab order is reproducible across runs. Per-device open or
// query failures are not errors, the device is just not eligible.
// An unreadable device directory is fatal.
func EnumerateEligible(log *log2.Log, dir string) ([]string, error) {
	if err := unix.Access(dir, unix.R_OK); err != nil {
		return nil, errors.Annotatef(err, "device directory %s", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Annotatef(err, "device directory %s", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		dev, err := evdev.Open(path)
		if err != nil {
			log.Debugf("enumerate open device=%s err=%v", path, err)
			continue
		}
		eligible := Eligible(dev)
		if eligible {
			log.Debugf("enumerate device=%s name=%q caps=%s", path, dev.Name, Classify(dev))
			paths = append(paths, path)
		}
		_ = dev.File.Close()
	}
	sort.Strings(paths)
	return paths, nil
}

// Start opens all currently eligible devices and begins reading them.
func (c *Capture) Start() error {
	paths, err := EnumerateEligible(c.log, c.dir)
	if err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, path := range paths {
		if err := c.openLocked(path); err != nil {
			c.log.Errorf("capture open device=%s err=%v", path, err)
		}
	}
	c.log.Infof("capture watching %d devices in %s", len(c.devices), c.dir)
	return nil
}

// GrabAll acquires an exclusive kernel grab (EVIOCGRAB) on every eligible
// device. While grabbed, the local session receives nothing from these
// devices, which is what makes local suppression real.
// Per-device failures are logged and skipped; the call fails only when
// there were eligible devices and not one could be grabbed.
func (c *Capture) GrabAll() error {
	paths, err := EnumerateEligible(c.log, c.dir)
	if err != nil {
		return errors.Trace(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	attempted, grabbed := 0, 0
	errs := make([]error, 0, len(paths))
	for _, path := range paths {
		d, ok := c.devices[path]
		if !ok {
			if err := c.openLocked(path); err != nil {
				c.log.Errorf("grab open device=%s err=%v", path, err)
				errs = append(errs, errors.Annotatef(err, "open %s", path))
				attempted++
				continue
			}
			d = c.devices[path]
		}
		attempted++
		if d.grabbed {
			grabbed++
			continue
		}
		if err := d.dev.Grab(); err != nil {
			c.log.Errorf("grab device=%s name=%q err=%v", path, d.dev.Name, err)
			errs = append(errs, errors.Annotatef(err, "grab %s", path))
			continue
		}
		d.grabbed = true
		grabbed++
	}
	if attempted > 0 && grabbed == 0 {
		return errors.Annotatef(helpers.FoldErrors(errs), "could not grab any of %d devices", attempted)
	}
	c.log.Infof("grabbed %d/%d devices", grabbed, attempted)
	return nil
}

// ReleaseAll drops the exclusive grab on every held device. Idempotent;
// a stuck device is logged and skipped, it never blocks the others.
func (c *Capture) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	released := 0
	for path, d := range c.devices {
		if !d.grabbed {
			continue
		}
		if err := d.dev.Release(); err != nil {
			c.log.Errorf("release device=%s err=%v", path, err)
		}
		d.grabbed = false
		released++
	}
	if released > 0 {
		c.log.Infof("released %d devices", released)
	}
}

// Close releases and closes every handle. Must run on teardown no matter
// how the pipeline died; closing the files also unblocks reader pumps
// stuck in a device read.
func (c *Capture) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, d := range c.devices {
		if d.grabbed {
			_ = d.dev.Release()
			d.grabbed = false
		}
		_ = d.dev.File.Close()
		delete(c.devices, path)
		c.log.Debugf("closed device=%s", path)
	}
}

// must hold c.mu
func (c *Capture) openLocked(path string) error {
	if _, ok := c.devices[path]; ok {
		return nil
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	d := &captureDevice{path: path, dev: dev}
	if !c.alive.Add(1) {
		_ = dev.File.Close()
		return errors.Errorf("capture is stopping")
	}
	c.devices[path] = d
	go c.pump(d)
	return nil
}

func (c *Capture) drop(d *captureDevice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.devices[d.path]; !ok || cur != d {
		return
	}
	if d.grabbed {
		_ = d.dev.Release()
		d.grabbed = false
	}
	_ = d.dev.File.Close()
	delete(c.devices, d.path)
}

// pump reads raw input_event records from one device and emits RawEvents,
// merging relative axis deltas between EV_SYN reports into single
// motion/scroll events.
func (c *Capture) pump(d *captureDevice) {
	defer c.alive.Done()
	var dx, dy, wheel, hwheel int32
	readErrs := 0
	for {
		ie, err := inputevent.ReadOne(d.dev.File)
		if err != nil {
			if !c.alive.IsRunning() {
				return
			}
			// transient read errors get a short backoff; a device that
			// keeps failing is gone (unplugged) and is dropped
			readErrs++
			if readErrs >= 3 {
				c.log.Errorf("capture read device=%s err=%v", d.path, err)
				c.drop(d)
				return
			}
			c.log.Debugf("capture read device=%s err=%v retry=%d", d.path, err, readErrs)
			select {
			case <-time.After(100 * time.Millisecond):
			case <-c.alive.StopChan():
				return
			}
			continue
		}
		readErrs = 0
		switch ie.Type {
		case evdev.EV_KEY:
			ev := RawEvent{Kind: RawKey, Code: ie.Code, Value: ie.Value}
			if ie.Code >= evdev.BTN_MISC && ie.Code < evdev.KEY_OK {
				ev.Kind = RawButton
			}
			if !c.emit(ev) {
				return
			}

		case evdev.EV_REL:
			switch ie.Code {
			case evdev.REL_X:
				dx += ie.Value
			case evdev.REL_Y:
				dy += ie.Value
			case evdev.REL_WHEEL:
				wheel += ie.Value
			case evdev.REL_HWHEEL:
				hwheel += ie.Value
			}

		case evdev.EV_SYN:
			if dx != 0 || dy != 0 {
				if !c.emit(RawEvent{Kind: RawMotion, DX: dx, DY: dy}) {
					return
				}
			}
			if wheel != 0 || hwheel != 0 {
				if !c.emit(RawEvent{Kind: RawScroll, DX: hwheel, DY: wheel}) {
					return
				}
			}
			dx, dy, wheel, hwheel = 0, 0, 0, 0
		}
	}
}

func (c *Capture) emit(ev RawEvent) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.alive.StopChan():
		return false
	}
}
