// Package events defines the typed pipeline event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - conversation.*
//   - pipeline.*
//
// user_input events
//
//   - UserTranscriptInterim (user_input.transcript_interim): mutable interim
//     transcript snapshot, surfaced for live captions only.
//   - UserTranscriptFinal (user_input.transcript_final): terminal transcript
//     for the utterance; the only transcript kind with downstream effect.
//   - RecognitionFailed (user_input.recognition_failed): the recognition
//     engine reported an error mid-session.
//
// conversation events
//
//   - TurnRecorded (conversation.turn_recorded): the orchestrator appended a
//     user or assistant turn to the conversation log.
//
// pipeline events
//
//   - StateChanged (pipeline.state_changed): the orchestrator state machine
//     moved to a new state.
//   - Notice (pipeline.notice): a user-visible, recoverable notice decided by
//     the orchestrator.
//   - ProcessingCompleted (pipeline.processing_completed): an
//     enrichment+generation cycle produced its answer.
//   - PlaybackEnded (pipeline.playback_ended): synthesis playback for the
//     current answer finished or was cancelled.
package events
