package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/clock"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// ── Create ──

func TestApplicationService_Create_AssignsNameAndTotal(t *testing.T) {
	svc, _, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	uniID := seedUniversity(t, svc)

	resp, err := svc.Application.Create(ctx, &dto.CreateApplicationRequest{
		Name:          model.NewNamePlaceholder,
		StudentID:     studentID,
		UniversityID:  uniID,
		Intake:        "september",
		IntakeYear:    "2024",
		ServiceFee:    1200,
		UniversityFee: 300.5,
	}, testCaller)
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if resp.Name != "APP00001" {
		t.Errorf("expected name APP00001, got %s", resp.Name)
	}
	if resp.TotalFee != 1500.5 {
		t.Errorf("expected total fee 1500.5, got %v", resp.TotalFee)
	}
	if resp.State != model.ApplicationDraft || resp.Outcome != model.OutcomePending {
		t.Errorf("expected draft/pending, got %s/%s", resp.State, resp.Outcome)
	}
	if resp.Priority != "0" {
		t.Errorf("expected default priority 0, got %s", resp.Priority)
	}
	if !resp.ApplicationDate.Equal(clock.DateOf(testNow)) {
		t.Errorf("expected application date today, got %v", resp.ApplicationDate)
	}
}

func TestApplicationService_Create_DistinctNames(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	uniID := seedUniversity(t, svc)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := seedApplication(t, svc, studentID, uniID)
		resp, err := svc.Application.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if seen[resp.Name] {
			t.Fatalf("name %s issued twice", resp.Name)
		}
		seen[resp.Name] = true
	}
}

func TestApplicationService_Create_SuppliedNameKept(t *testing.T) {
	svc, st, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	uniID := seedUniversity(t, svc)

	resp, err := svc.Application.Create(context.Background(), &dto.CreateApplicationRequest{
		Name: "LEGACY-7", StudentID: studentID, UniversityID: uniID, Intake: "january", IntakeYear: "2025",
	}, testCaller)
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if resp.Name != "LEGACY-7" {
		t.Errorf("expected supplied name, got %s", resp.Name)
	}
	if st.sequences[model.SequenceApplication].NextNumber != 1 {
		t.Error("a supplied name must not consume a sequence value")
	}

	_, err = svc.Application.Create(context.Background(), &dto.CreateApplicationRequest{
		Name: "LEGACY-7", StudentID: studentID, UniversityID: uniID, Intake: "january", IntakeYear: "2025",
	}, testCaller)
	if !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
}

func TestApplicationService_Create_DrawSkipsSuppliedName(t *testing.T) {
	svc, st, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	uniID := seedUniversity(t, svc)

	create := func(name string) (*dto.ApplicationResponse, error) {
		return svc.Application.Create(ctx, &dto.CreateApplicationRequest{
			Name: name, StudentID: studentID, UniversityID: uniID, Intake: "january", IntakeYear: "2025",
		}, testCaller)
	}

	if _, err := create("APP00002"); err != nil {
		t.Fatalf("Create with a future counter value should succeed: %v", err)
	}

	var got []string
	for i := 0; i < 3; i++ {
		resp, err := create("")
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		got = append(got, resp.Name)
	}
	want := []string{"APP00001", "APP00003", "APP00004"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if st.sequences[model.SequenceApplication].NextNumber != 5 {
		t.Errorf("expected the counter at 5, got %d", st.sequences[model.SequenceApplication].NextNumber)
	}

	dup, err := svc.Application.Duplicate(ctx, seedApplication(t, svc, studentID, uniID), testCaller)
	if err != nil {
		t.Fatalf("Duplicate after a supplied name should succeed: %v", err)
	}
	if dup.Name != "APP00006" {
		t.Errorf("expected APP00006, got %s", dup.Name)
	}
}

func TestApplicationService_Create_CourseMismatch(t *testing.T) {
	svc, _, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	uniA := seedUniversity(t, svc)
	uniB := seedUniversity(t, svc)

	course, err := svc.University.CreateCourse(ctx, uniB, &dto.CourseRequest{Name: "MSc Data Science", Level: "master"}, testCaller)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	_, err = svc.Application.Create(ctx, &dto.CreateApplicationRequest{
		StudentID: studentID, UniversityID: uniA, CourseID: &course.CourseID, Intake: "september", IntakeYear: "2024",
	}, testCaller)
	if !errors.Is(err, ErrCourseMismatch) {
		t.Errorf("expected ErrCourseMismatch, got %v", err)
	}
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Error("course mismatch should be a validation error")
	}
}

func TestApplicationService_Create_UnknownStudent(t *testing.T) {
	svc, _, _ := setupTestServices()
	uniID := seedUniversity(t, svc)

	_, err := svc.Application.Create(context.Background(), &dto.CreateApplicationRequest{
		StudentID: "missing", UniversityID: uniID, Intake: "may", IntakeYear: "2024",
	}, testCaller)
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

// ── Update ──

func TestApplicationService_Update_RecomputesTotal(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	fee := 900.0
	resp, err := svc.Application.Update(context.Background(), appID, &dto.UpdateApplicationRequest{ServiceFee: &fee}, testCaller)
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if resp.TotalFee != 1150 {
		t.Errorf("expected total 1150, got %v", resp.TotalFee)
	}
}

// ── Act ──

func TestApplicationService_Act_SubmitWithoutDocuments(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	_, err := svc.Application.Act(context.Background(), appID, workflow.ActionSubmit, testCaller)
	if !errors.Is(err, workflow.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}

	resp, _ := svc.Application.GetByID(context.Background(), appID)
	if resp.State != model.ApplicationDraft {
		t.Errorf("state must stay draft after a guard violation, got %s", resp.State)
	}
	if resp.SubmissionDate != nil {
		t.Error("submission date must not be stamped after a guard violation")
	}
}

func TestApplicationService_Act_FullLifecycle(t *testing.T) {
	svc, _, notifier := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))
	docID := seedDocument(t, svc, studentID, appID)

	resp, err := svc.Application.Act(ctx, appID, workflow.ActionSubmit, testCaller)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.State != model.ApplicationDocumentVerification {
		t.Errorf("expected document_verification, got %s", resp.State)
	}
	if resp.SubmissionDate == nil || resp.SubmissionDate.Day() != 15 {
		t.Errorf("expected submission date stamped with today, got %v", resp.SubmissionDate)
	}

	if _, err := svc.Application.Act(ctx, appID, workflow.ActionVerifyDocuments, testCaller); !errors.Is(err, workflow.ErrDocumentsNotVerified) {
		t.Fatalf("expected ErrDocumentsNotVerified with a pending document, got %v", err)
	}

	for _, a := range []workflow.DocumentAction{workflow.ActionReceiveDocument, workflow.ActionVerifyDocument} {
		if _, err := svc.Document.Act(ctx, docID, a, testCaller); err != nil {
			t.Fatalf("document %s: %v", a, err)
		}
	}

	steps := []struct {
		action workflow.ApplicationAction
		want   model.ApplicationState
	}{
		{workflow.ActionVerifyDocuments, model.ApplicationSubmitted},
		{workflow.ActionSubmitToUniversity, model.ApplicationInProgress},
		{workflow.ActionOfferReceived, model.ApplicationOfferReceived},
		{workflow.ActionAcceptOffer, model.ApplicationOfferAccepted},
		{workflow.ActionFileVisa, model.ApplicationVisaFiled},
		{workflow.ActionApproveVisa, model.ApplicationVisaApproved},
	}
	for _, step := range steps {
		resp, err = svc.Application.Act(ctx, appID, step.action, testCaller)
		if err != nil {
			t.Fatalf("%s: %v", step.action, err)
		}
		if resp.State != step.want {
			t.Fatalf("%s: expected %s, got %s", step.action, step.want, resp.State)
		}
	}

	if resp.Outcome != model.OutcomeAccepted {
		t.Errorf("expected outcome accepted, got %s", resp.Outcome)
	}
	if resp.UniversityResponseDate == nil {
		t.Error("expected university response date stamped by offer_received")
	}

	student, err := svc.Student.GetByID(ctx, studentID)
	if err != nil {
		t.Fatalf("GetByID student: %v", err)
	}
	if student.State != model.StudentCompleted {
		t.Errorf("approve_visa should complete the student, got %s", student.State)
	}

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected offer and visa notifications, got %d", len(msgs))
	}
	if msgs[0].ToAddress != "asha@example.com" || !strings.Contains(msgs[1].Subject, "Visa approved") {
		t.Errorf("unexpected notifications: %+v", msgs)
	}
}

func TestApplicationService_Act_VerifyWithNoDocuments(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	resp, err := svc.Application.Act(context.Background(), appID, workflow.ActionVerifyDocuments, testCaller)
	if err != nil {
		t.Fatalf("verify_documents with no documents should pass: %v", err)
	}
	if resp.State != model.ApplicationSubmitted {
		t.Errorf("expected submitted, got %s", resp.State)
	}
}

func TestApplicationService_Act_RejectSetsOutcome(t *testing.T) {
	svc, _, notifier := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	resp, err := svc.Application.Act(context.Background(), appID, workflow.ActionRejectApplication, testCaller)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resp.State != model.ApplicationRejected || resp.Outcome != model.OutcomeRejected {
		t.Errorf("expected rejected/rejected, got %s/%s", resp.State, resp.Outcome)
	}
	if len(notifier.messages()) != 1 {
		t.Errorf("expected one rejection notice, got %d", len(notifier.messages()))
	}

	student, _ := svc.Student.GetByID(context.Background(), studentID)
	if student.State == model.StudentCompleted {
		t.Error("reject must not complete the student")
	}
}

func TestApplicationService_Act_SetDraftKeepsDates(t *testing.T) {
	svc, _, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))
	seedDocument(t, svc, studentID, appID)

	if _, err := svc.Application.Act(ctx, appID, workflow.ActionSubmit, testCaller); err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp, err := svc.Application.Act(ctx, appID, workflow.ActionSetDraft, testCaller)
	if err != nil {
		t.Fatalf("set_draft: %v", err)
	}
	if resp.State != model.ApplicationDraft {
		t.Errorf("expected draft, got %s", resp.State)
	}
	if resp.SubmissionDate == nil {
		t.Error("set_draft should keep the recorded submission date")
	}
}

func TestApplicationService_Act_ApproveFromDraft(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	resp, err := svc.Application.Act(context.Background(), appID, workflow.ActionApproveVisa, testCaller)
	if err != nil {
		t.Fatalf("approve_visa is reachable from any state: %v", err)
	}
	if resp.State != model.ApplicationVisaApproved {
		t.Errorf("expected visa_approved, got %s", resp.State)
	}
}

func TestApplicationService_Act_NotFound(t *testing.T) {
	svc, _, _ := setupTestServices()

	_, err := svc.Application.Act(context.Background(), "missing", workflow.ActionSubmit, testCaller)
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationService_Act_UnknownAction(t *testing.T) {
	svc, _, _ := setupTestServices()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	_, err := svc.Application.Act(context.Background(), appID, workflow.ApplicationAction("teleport"), testCaller)
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

// ── Duplicate ──

func TestApplicationService_Duplicate(t *testing.T) {
	svc, _, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))
	seedDocument(t, svc, studentID, appID)
	if _, err := svc.Application.Act(ctx, appID, workflow.ActionSubmit, testCaller); err != nil {
		t.Fatalf("submit: %v", err)
	}

	orig, _ := svc.Application.GetByID(ctx, appID)
	dup, err := svc.Application.Duplicate(ctx, appID, testCaller)
	if err != nil {
		t.Fatalf("Duplicate should succeed: %v", err)
	}
	if dup.ApplicationID == appID || dup.Name == orig.Name {
		t.Error("duplicate must be a new record with a fresh name")
	}
	if dup.State != model.ApplicationDraft || dup.SubmissionDate != nil {
		t.Errorf("duplicate should start as a clean draft, got %s submitted=%v", dup.State, dup.SubmissionDate)
	}
	if dup.TotalFee != orig.TotalFee || dup.StudentID != orig.StudentID {
		t.Error("duplicate should copy fees and student")
	}
}

// ── Delete ──

func TestApplicationService_Delete(t *testing.T) {
	svc, _, _ := setupTestServices()
	ctx := context.Background()
	studentID := seedStudent(t, svc, "asha@example.com")
	appID := seedApplication(t, svc, studentID, seedUniversity(t, svc))

	if err := svc.Application.Delete(ctx, appID); err != nil {
		t.Fatalf("Delete should succeed: %v", err)
	}
	if _, err := svc.Application.GetByID(ctx, appID); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("expected ErrApplicationNotFound after delete, got %v", err)
	}
}
