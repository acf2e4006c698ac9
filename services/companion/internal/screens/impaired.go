package screens

import (
	"context"
	"log/slog"

	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/device"
)

const (
	cameraDenied  = "Could not access the camera. Please check permissions."
	speakPrompt   = "What's in front of me?"
	glassNotReady = "Please connect your IRIS Glass first."
)

// Pairing walks the user through connecting the glass.
type Pairing struct {
	env *Env
	msg string
}

func (s *Pairing) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	connected := localstore.Bind(e.Store, localstore.KeyDeviceConnected, false)
	e.header("Pair Your IRIS Glass")
	e.println("  1. Turn on your Glass / Press and hold the power button.")
	e.println("  2. Scan QR Code")
	e.println("  3. Enable Bluetooth")
	if connected.Get() {
		e.println("Status: Connected")
	} else {
		e.println("Status: Not connected")
	}
	e.inline(&s.msg)
	e.menu(
		option{"s", "Scan QR Code"},
		option{"c", "Continue"},
		option{"h", "Help"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		err := device.WithCamera(ctx, e.Camera, func(st device.Stream) error {
			_, err := st.Capture(ctx)
			return err
		})
		if err != nil {
			if fatal(err) {
				return err
			}
			slog.Warn("pairing scan failed", "err", err)
			s.msg = cameraDenied
			return nil
		}
		if err := connected.Set(true); err != nil {
			slog.Warn("save pairing state", "err", err)
		}
		s.msg = "IRIS Glass connected."
	case "c":
		if !connected.Get() {
			s.msg = glassNotReady
			return nil
		}
		e.Nav.Goto(nav.ImpairedMain, nil)
	case "h":
		e.Nav.Goto(nav.Help, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

// ImpairedMain is the voice assistant home of the impaired user.
type ImpairedMain struct {
	env        *Env
	transcript []domain.Message
	msg        string
}

func newImpairedMain(env *Env) *ImpairedMain {
	s := &ImpairedMain{env: env}
	s.reset()
	return s
}

// reset restores the opening exchange and drops any pending message.
func (s *ImpairedMain) reset() {
	now := s.env.now()
	s.transcript = []domain.Message{
		{Sender: domain.SenderYou, Text: "Describe what's in front of me.", Timestamp: now},
		{Sender: domain.SenderIRIS, Text: assistant.CannedScene, Timestamp: now},
	}
	s.msg = ""
}

func (s *ImpairedMain) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	e.header("IRIS")
	if localstore.Get(e.Store, localstore.KeyDeviceConnected, false) {
		e.println("Glass: Connected")
	} else {
		e.println("Glass: Disconnected")
	}
	for _, m := range s.transcript {
		e.printf("  [%s] %s: %s\n", m.Timestamp.Format("3:04 PM"), m.Sender, m.Text)
	}
	e.inline(&s.msg)
	e.menu(
		option{"s", "Speak: " + speakPrompt},
		option{"e", "SOS"},
		option{"g", "Settings"},
		option{"h", "Help"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		return s.speak(ctx)
	case "e":
		e.Nav.Goto(nav.EmergencyAlert, nav.NoticePayload{To: nav.EmergencyAlert, Text: s.sos(ctx)})
	case "g":
		e.Nav.Goto(nav.Settings, nil)
	case "h":
		e.Nav.Goto(nav.Help, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *ImpairedMain) speak(ctx context.Context) error {
	e := s.env
	var frame device.Frame
	err := device.WithCamera(ctx, e.Camera, func(st device.Stream) error {
		var err error
		frame, err = st.Capture(ctx)
		return err
	})
	if err != nil {
		if fatal(err) {
			return err
		}
		slog.Warn("capture for narration failed", "err", err)
		s.msg = cameraDenied
		return nil
	}
	asked := e.now()
	answer := e.Assistant.Narrate(ctx, speakPrompt, frame.Scene)
	s.transcript = append(s.transcript,
		domain.Message{Sender: domain.SenderYou, Text: speakPrompt, Timestamp: asked},
		domain.Message{Sender: domain.SenderIRIS, Text: answer, Timestamp: e.now()},
	)
	return nil
}

// sos notifies the paired guide when a backend is reachable and returns the
// line shown on the alert screen.
func (s *ImpairedMain) sos(ctx context.Context) string {
	e := s.env
	sess, ok := e.online()
	if !ok {
		return "Alerting your emergency contact."
	}
	if _, err := e.Backend.RaiseSOS(ctx, sess.Token, ""); err != nil {
		slog.Warn("raise sos failed", "account_id", sess.Account.ID, "err", err)
		return "Could not reach your guide. Alerting your emergency contact."
	}
	slog.Info("sos raised", "account_id", sess.Account.ID, "device_id", sess.Account.DeviceID)
	return "Your guide has been notified."
}

// Emergency is shown after SOS.
type Emergency struct {
	env *Env
	msg string
}

func (s *Emergency) Show(_ context.Context, st nav.State) error {
	e := s.env
	e.header("Emergency Alert")
	e.println("SOS activated. Help is on the way.")
	e.notice(st)
	e.inline(&s.msg)
	e.menu(
		option{"c", "Call John"},
		option{"d", "Dismiss"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "c":
		s.msg = "Calling John..."
	case "d":
		e.Nav.Goto(nav.ImpairedMain, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}
