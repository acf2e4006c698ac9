package screens

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"irisguide/pkg/domain"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/backendclient"
	"irisguide/services/companion/internal/device"
	"irisguide/services/companion/internal/geo"
)

const (
	liveCameraDenied = "Could not access the camera. Please check permissions and try again."
	locationDenied   = "Unable to get live location. Please check device settings. Showing default map."
	alertsShown      = 3
)

// GuideMain is the guide dashboard: the glass camera feed, the user's
// location and recent SOS alerts.
type GuideMain struct {
	env *Env
	msg string
}

type liveView struct {
	frame     device.Frame
	cameraErr error
	pos       device.Position
	live      bool
	addr      geo.Address
}

// capture reads one frame and one position fix in parallel. The camera is
// released before capture returns.
func (s *GuideMain) capture(ctx context.Context) (liveView, error) {
	e := s.env
	var v liveView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.cameraErr = device.WithCamera(gctx, e.Camera, func(st device.Stream) error {
			var err error
			v.frame, err = st.Capture(gctx)
			return err
		})
		if fatal(v.cameraErr) {
			return v.cameraErr
		}
		return nil
	})
	g.Go(func() error {
		var err error
		v.pos, v.live, err = device.Locate(gctx, e.Locator)
		if err != nil && fatal(err) {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return liveView{}, err
	}
	if v.live {
		v.addr = geo.Resolve(ctx, e.Geocoder, v.pos)
	} else {
		v.addr = geo.Fallback
	}
	return v, nil
}

func (s *GuideMain) Show(ctx context.Context, st nav.State) error {
	e := s.env
	view, err := s.capture(ctx)
	if err != nil {
		return err
	}
	e.header("Guide Dashboard")
	if sess, ok := e.Session(); ok {
		e.printf("Hello, %s\n", sess.Account.FullName)
	}
	e.notice(st)
	if view.cameraErr != nil {
		slog.Warn("guide camera unavailable", "err", view.cameraErr)
		e.printf("Live Feed: %s\n", liveCameraDenied)
	} else {
		e.printf("Live Feed: %d byte %s frame at %s\n",
			len(view.frame.Image), view.frame.ContentType, view.frame.CapturedAt.Local().Format("3:04:05 PM"))
		e.printf("AI Analysis: %s\n", view.frame.Scene)
	}
	if !view.live {
		e.println(locationDenied)
	}
	e.printf("Location: %s, %s\n", view.addr.Street, view.addr.City)
	e.printf("Map: %s\n", geo.MapURL(view.pos))
	s.alerts(ctx)
	e.inline(&s.msg)
	e.menu(
		option{"a", "Add Person"},
		option{"c", "AI Assistant"},
		option{"h", "History"},
		option{"s", "Settings"},
		option{"r", "Refresh"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "a":
		e.Nav.Goto(nav.AddPerson, nil)
	case "c":
		e.Nav.Goto(nav.GuideAIChat, nil)
	case "h":
		e.Nav.Goto(nav.History, nil)
	case "s":
		e.Nav.Goto(nav.Settings, nil)
	case "r", "":
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *GuideMain) alerts(ctx context.Context) {
	e := s.env
	sess, ok := e.online()
	if !ok {
		return
	}
	list, err := e.Backend.Alerts(ctx, sess.Token)
	if err != nil {
		slog.Warn("load alerts failed", "account_id", sess.Account.ID, "err", err)
		return
	}
	if len(list) == 0 {
		e.println("Alerts: none")
		return
	}
	e.printf("Alerts: %d recent\n", len(list))
	for _, a := range list[:min(alertsShown, len(list))] {
		e.printf("  SOS %s: %s\n", a.CreatedAt.Local().Format("3:04 PM"), a.Message)
	}
}

// AddPerson enrolls a known face from the glass camera.
type AddPerson struct {
	env *Env
	msg string
}

func (s *AddPerson) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	e.header("Add a Known Person")
	e.println("Look at the person through the glass, then save.")
	e.inline(&s.msg)
	e.menu(
		option{"s", "Capture and Save"},
		option{"b", "Back"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		return s.save(ctx)
	case "b":
		e.Nav.Goto(nav.GuideMain, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *AddPerson) save(ctx context.Context) error {
	e := s.env
	name, err := e.Prompt.Line("Name: ")
	if err != nil {
		return err
	}
	if name == "" {
		s.msg = "Please enter the person's name."
		return nil
	}
	relationship, err := e.Prompt.Line("Relationship (optional): ")
	if err != nil {
		return err
	}
	sess, ok := e.online()
	if !ok {
		s.msg = "Saving people needs a connection to the IRIS service."
		return nil
	}
	var frame device.Frame
	err = device.WithCamera(ctx, e.Camera, func(st device.Stream) error {
		var err error
		frame, err = st.Capture(ctx)
		return err
	})
	if err != nil {
		if fatal(err) {
			return err
		}
		s.msg = cameraDenied
		return nil
	}
	face, err := e.Backend.AddFace(ctx, sess.Token, backendclient.FaceInput{
		UserID:       sess.Account.ID,
		Name:         name,
		ImageURL:     dataURL(frame),
		Relationship: relationship,
	})
	if err != nil {
		if fatal(err) {
			return err
		}
		slog.Warn("add face failed", "account_id", sess.Account.ID, "err", err)
		if m, ok := validationMessage(err); ok {
			s.msg = m
		} else {
			s.msg = "Could not save this person. Please try again."
		}
		return nil
	}
	slog.Info("face added", "account_id", sess.Account.ID, "face_id", face.ID)
	e.Nav.Goto(nav.GuideMain, nav.AddPersonDone{Name: face.Name})
	return nil
}

func dataURL(f device.Frame) string {
	ct := f.ContentType
	if ct == "" {
		ct = "image/png"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Image)
}

// GuideChat is the guide's conversation with the AI assistant.
type GuideChat struct {
	env        *Env
	transcript []domain.Message
	msg        string
}

func (s *GuideChat) reset() {
	s.transcript = nil
	s.msg = ""
}

func (s *GuideChat) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	if s.transcript == nil {
		s.transcript = []domain.Message{{Sender: domain.SenderAssistant, Text: assistant.Greeting, Timestamp: e.now()}}
		if !e.Assistant.Available() {
			s.transcript = append(s.transcript,
				domain.Message{Sender: domain.SenderAssistant, Text: assistant.MissingKey, Timestamp: e.now()})
		}
	}
	e.header("AI Assistant")
	for _, m := range s.transcript {
		e.printf("  [%s] %s: %s\n", m.Timestamp.Format("3:04 PM"), m.Sender, m.Text)
	}
	e.inline(&s.msg)
	e.println("Type a question, or \"back\" to return.")
	line, err := e.Prompt.Line("> ")
	if err != nil {
		return err
	}
	switch strings.ToLower(line) {
	case "":
		return nil
	case "back", "b":
		e.Nav.Goto(nav.GuideMain, nil)
		return nil
	}
	if !e.Assistant.Available() {
		s.msg = "The AI assistant is unavailable."
		return nil
	}
	s.transcript = append(s.transcript, domain.Message{Sender: domain.SenderYou, Text: line, Timestamp: e.now()})
	answer, err := e.Assistant.Ask(ctx, line)
	if err != nil {
		if fatal(err) {
			return err
		}
		slog.Warn("assistant request failed", "err", err)
		answer = assistant.ChatFailure
	}
	s.transcript = append(s.transcript, domain.Message{Sender: domain.SenderAssistant, Text: answer, Timestamp: e.now()})
	return nil
}

type sighting struct {
	name   string
	status string
	place  string
	at     string
}

type voiceQuery struct {
	text string
	at   string
}

var (
	recentSightings = []sighting{
		{"Jane Doe", "Known", "Central Park Entrance", "11:45 AM"},
		{"Unknown Person", "Unknown", "5th Ave & E 60th St", "11:42 AM"},
		{"John Smith", "Known", "Coffee Shop on Madison", "11:20 AM"},
	}
	recentQueries = []voiceQuery{
		{"What's the weather like?", "11:50 AM"},
		{"Describe what's in front of me.", "11:41 AM"},
		{"Is this crosswalk safe to cross?", "11:40 AM"},
		{"Call my guide.", "11:15 AM"},
	}
	lastLocation = struct {
		place string
		at    string
		pos   device.Position
	}{"Central Park, New York, NY", "11:52 AM", device.Position{Lat: 40.785091, Lon: -73.968285}}
)

// History shows what the glass recognised, heard and where it was last seen.
type History struct {
	env *Env
	tab string
	msg string
}

func (s *History) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	if s.tab == "" {
		s.tab = "1"
	}
	e.header("History")
	switch s.tab {
	case "1":
		e.println("Recognized Faces")
		for _, f := range recentSightings {
			e.printf("  %s (%s) at %s, %s\n", f.name, f.status, f.place, f.at)
		}
		s.knownFaces(ctx)
	case "2":
		e.println("Voice Commands")
		for _, q := range recentQueries {
			e.printf("  \"%s\" %s\n", q.text, q.at)
		}
	case "3":
		e.println("Last Known Location")
		e.printf("  %s at %s\n", lastLocation.place, lastLocation.at)
		e.printf("  Map: %s\n", geo.MapURL(lastLocation.pos))
	}
	e.inline(&s.msg)
	e.menu(
		option{"1", "Faces"},
		option{"2", "Voice"},
		option{"3", "Location"},
		option{"b", "Back"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "1", "2", "3":
		s.tab = cmd
	case "b":
		e.Nav.Goto(nav.GuideMain, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *History) knownFaces(ctx context.Context) {
	e := s.env
	sess, ok := e.online()
	if !ok {
		return
	}
	faces, err := e.Backend.ListFaces(ctx, sess.Token, sess.Account.ID)
	if err != nil {
		slog.Warn("list faces failed", "account_id", sess.Account.ID, "err", err)
		return
	}
	if len(faces) == 0 {
		return
	}
	e.println("Known People")
	for _, f := range faces {
		e.printf("  %s (%s)\n", f.Name, f.Relationship)
	}
}
