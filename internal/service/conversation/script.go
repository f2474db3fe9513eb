package conversation

import "github.com/insureassist/backend/internal/model/conversation"

// Dialogue steps. The script is a straight line: each user submission moves
// the session one step forward until StepDone, which absorbs all further
// input.
const (
	StepAge = iota
	StepGender
	StepOccupation
	StepHealth
	StepDone
)

// Opening is the prompt the user answers at StepAge. Fresh sessions carry
// no turns, so the opener travels on the session snapshot instead.
const Opening = "Hello! I'm your insurance advisor. I'll help you find the best insurance policy based on your needs. Let's start with some basic information. How old are you?"

// transition describes one scripted exchange: which requirement field the
// user's answer fills, the reply the bot sends back, where the dialogue
// goes next, and whether offer generation fires after the reply.
type transition struct {
	capture  func(*conversation.Requirement, string)
	reply    string
	next     int
	generate bool
}

// script is indexed by step. Modelled as a table rather than inline
// branching so transitions can be tested exhaustively.
var script = [...]transition{
	StepAge: {
		capture: captureAge,
		reply:   "Thank you. What is your gender?",
		next:    StepGender,
	},
	StepGender: {
		capture: captureGender,
		reply:   "Great. What is your occupation?",
		next:    StepOccupation,
	},
	StepOccupation: {
		capture: captureOccupation,
		reply:   "Do you have any pre-existing health conditions? (e.g., diabetes, hypertension, etc.)",
		next:    StepHealth,
	},
	StepHealth: {
		capture:  captureHealth,
		reply:    "Thank you for providing this information. I'll analyze your profile and find the best insurance policies for you. This will just take a moment...",
		next:     StepDone,
		generate: true,
	},
	StepDone: {
		reply: "Thank you for the additional information. Is there anything else you'd like to tell me about your insurance needs?",
		next:  StepDone,
	},
}

// Prompt returns the question the user is currently answering, empty once
// the dialogue has reached the terminal step.
func Prompt(step int) string {
	switch step {
	case StepAge:
		return Opening
	case StepGender, StepOccupation, StepHealth:
		return script[step-1].reply
	default:
		return ""
	}
}
