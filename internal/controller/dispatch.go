package controller

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/clock"
	"github.com/sweeney/game-controller/internal/logic"
	"github.com/sweeney/game-controller/internal/protocol"
)

// Dispatch parses and applies one inbound line. Lines that are malformed,
// carry an unknown tag or an out-of-range argument change nothing; they are
// counted and reported to the Observer.
func (c *Controller) Dispatch(line string, now clock.Timestamp) {
	msg := protocol.ParseLine(line)
	if msg.Malformed() {
		c.ignore(line, msg.Err)
		return
	}

	switch msg.Tag {
	case protocol.TagState:
		if msg.Arg == logic.ResetSentinel {
			c.setState(logic.StateIdle, now)
			break
		}
		if msg.Arg < 0 || msg.Arg >= logic.ResetSentinel {
			c.ignore(line, protocol.ErrOutOfRange)
			return
		}
		c.setState(logic.GameState(msg.Arg), now)

	case protocol.TagTone:
		if msg.Arg <= 0 {
			c.ignore(line, protocol.ErrOutOfRange)
			return
		}
		c.playTone(logic.Tone{FreqHz: msg.Arg, Duration: logic.CommandToneDuration})

	case protocol.TagReset:
		if msg.Arg != logic.ResetSentinel {
			c.ignore(line, protocol.ErrOutOfRange)
			return
		}
		c.setState(logic.StateIdle, now)
		c.servo.Center()
		c.setServo()
		c.playTone(logic.ResetTone)

	case protocol.TagVariant:
		switch msg.Arg {
		case int(logic.StateSpecial1):
			c.setState(logic.StateSpecial1, now)
		case int(logic.StateSpecial2):
			c.setState(logic.StateSpecial2, now)
		default:
			c.ignore(line, protocol.ErrOutOfRange)
			return
		}

	default:
		c.ignore(line, protocol.ErrUnknownTag)
		return
	}

	c.counts.Commands++
	log.Debug().Str("line", line).Str("state", c.state.String()).Msg("command")
}

// setState enters s and re-derives LED colour, entry tone and blink cadence.
func (c *Controller) setState(s logic.GameState, now clock.Timestamp) {
	from := c.state
	c.state = s
	c.counts.Transitions++

	fb := logic.FeedbackFor(s)
	c.setColor(c.blink.Start(fb, now))
	c.playTone(fb.Tone)

	c.emit(logic.Event{Time: now, Type: logic.EventState, State: s, From: from})
}

func (c *Controller) ignore(line string, reason error) {
	c.counts.Ignored++
	if c.cfg.Observer != nil {
		c.cfg.Observer.Ignored(line, reason)
	}
}
