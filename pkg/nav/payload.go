package nav

import "irisguide/pkg/domain"

// Payload is data handed to the next screen. Each variant names the screen
// it is meant for; Goto drops payloads addressed elsewhere.
type Payload interface {
	Target() Screen
}

// LegalTextPayload carries a document and the screen to return to.
type LegalTextPayload struct {
	Title   string
	Content string
	Return  Screen
}

func (LegalTextPayload) Target() Screen { return LegalText }

// NoticePayload is an inline message shown once on the destination screen.
type NoticePayload struct {
	To   Screen
	Text string
}

func (p NoticePayload) Target() Screen { return p.To }

// AddPersonDone reports a face enrolled on ADD_PERSON back to GUIDE_MAIN.
type AddPersonDone struct {
	Name string
}

func (AddPersonDone) Target() Screen { return GuideMain }

// RolePayload carries the role whose flow a shared screen serves.
type RolePayload struct {
	To   Screen
	Role domain.Role
}

func (p RolePayload) Target() Screen { return p.To }
