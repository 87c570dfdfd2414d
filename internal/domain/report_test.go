package domain

import "testing"

func TestStatusRaiseIsMonotonic(t *testing.T) {
	cases := []struct {
		from, to, want VerificationStatus
	}{
		{VerificationPending, VerificationVerified, VerificationVerified},
		{VerificationDisputed, VerificationVerified, VerificationVerified},
		{VerificationVerified, VerificationPending, VerificationVerified},
		{VerificationVerified, VerificationDisputed, VerificationVerified},
		{VerificationFlagged, VerificationVerified, VerificationFlagged},
	}
	for _, tc := range cases {
		if got := tc.from.Raise(tc.to); got != tc.want {
			t.Fatalf("%s.Raise(%s) = %s, want %s", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestApplyCoSignatureQuorum(t *testing.T) {
	r := VerificationReport{Status: VerificationPending}
	r.ApplyCoSignature(CoSignature{Signer: "a", Signature: "s"})
	if r.Status != VerificationPending {
		t.Fatalf("below quorum must not promote, got %s", r.Status)
	}
	r.ApplyCoSignature(CoSignature{Signer: "b", Signature: "s"})
	if r.Status != VerificationVerified {
		t.Fatalf("quorum must promote, got %s", r.Status)
	}
}

func TestSubmissionValidate(t *testing.T) {
	valid := Submission{ID: "s1", Payload: []byte("x"), MediaKind: MediaImage, Submitter: "u1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	cases := []Submission{
		{Payload: []byte("x"), MediaKind: MediaImage, Submitter: "u1"},
		{ID: "s1", MediaKind: MediaImage, Submitter: "u1"},
		{ID: "s1", Payload: []byte("x"), MediaKind: "hologram", Submitter: "u1"},
		{ID: "s1", Payload: []byte("x"), MediaKind: MediaImage},
	}
	for i, sub := range cases {
		if err := sub.Validate(); err == nil {
			t.Fatalf("case %d: invalid submission accepted", i)
		}
	}
}

func TestMediaKindTranscription(t *testing.T) {
	if MediaImage.RequiresTranscription() || MediaDocument.RequiresTranscription() {
		t.Fatal("image and document submissions are not transcribed")
	}
	if !MediaAudio.RequiresTranscription() || !MediaVideo.RequiresTranscription() {
		t.Fatal("audio and video submissions require transcription")
	}
}

func TestOutcomeTerminality(t *testing.T) {
	completed := PipelineOutcome{Status: PipelineCompleted}
	violation := PipelineOutcome{Status: PipelineFailed, FailureCode: FailurePolicyViolation}
	cancelled := PipelineOutcome{Status: PipelineFailed, FailureCode: FailureCancelled}
	if !completed.Terminal() || !violation.Terminal() {
		t.Fatal("completed runs and policy violations are terminal")
	}
	if cancelled.Terminal() {
		t.Fatal("cancelled runs must stay retryable")
	}
}
