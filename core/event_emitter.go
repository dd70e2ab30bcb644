package pipeline

import events "github.com/stockest/stockest-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OrchestrateOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.StateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(State(typedEvent.State), typedEvent.Reason)
			}
		case events.TurnRecorded:
			if opts.onTurn != nil {
				opts.onTurn(typedEvent.Turn)
			}
		case events.UserTranscriptInterim:
			if opts.onInterimTranscription != nil {
				opts.onInterimTranscription(typedEvent.Transcript)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.ProcessingCompleted:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Answer, typedEvent.Degraded)
			}
		case events.Notice:
			if opts.onNotice != nil {
				opts.onNotice(typedEvent.Title, typedEvent.Detail)
			}
		case events.PlaybackEnded:
			if opts.onPlaybackEnded != nil {
				opts.onPlaybackEnded(typedEvent.Transcript)
			}
		}
	}
}
