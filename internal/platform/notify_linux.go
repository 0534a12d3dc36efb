//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

// Notify sends a desktop notification using the Freedesktop.org notification spec.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		opts.appName(), uint32(0), opts.IconPath, title, body, []string{}, hints(opts),
		int32(opts.timeout().Milliseconds()))
	return call.Err
}

func hints(opts Options) map[string]dbus.Variant {
	h := map[string]dbus.Variant{}
	if opts.Category != "" {
		h["category"] = dbus.MakeVariant(opts.Category)
	}
	if opts.Image != nil && !opts.Image.Bounds().Empty() {
		h["image-data"] = dbus.MakeVariant(newRawImage(opts.Image))
	}
	return h
}
