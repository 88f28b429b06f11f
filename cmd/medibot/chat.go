package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"medibot/models"
	"medibot/services/appointments"
	"medibot/services/conversation"
	"medibot/services/editor"
	ai "medibot/services/intelligence"
	"medibot/utils"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Starts a conversation against the remote Record Store and classifier.

Commands:
  /ver ID        show the appointments offered by message ID
  /agendar ID    fill in the booking form offered by message ID
  /cancelar ID   cancel appointment ID
  /salir         quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if settings.GetBool("VERBOSE") {
			logger = utils.GetLogger()
		}
		base := settings.GetString("API_BASE_URL")
		store := appointments.NewHTTPRecordStore(base, requestTimeout(), logger)
		classifier := ai.NewRemoteClassifier(base, requestTimeout(), logger)
		o := conversation.New(appointments.NewCache(store, logger), classifier, conversation.Options{Logger: logger})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return newREPL(o, cmd.InOrStdin(), cmd.OutOrStdout()).run(ctx)
	},
}

var fieldPrompts = []struct {
	name  string
	label string
}{
	{editor.FieldPatient, "Paciente"},
	{editor.FieldSpecialty, "Especialidad (" + strings.Join(models.Specialties, ", ") + ")"},
	{editor.FieldDate, "Fecha (AAAA-MM-DD)"},
	{editor.FieldTime, "Hora (HH:MM)"},
	{editor.FieldDoctor, "Doctor"},
	{editor.FieldNotes, "Notas"},
}

type repl struct {
	o       *conversation.Orchestrator
	in      *bufio.Scanner
	out     io.Writer
	printed int
}

func newREPL(o *conversation.Orchestrator, in io.Reader, out io.Writer) *repl {
	return &repl{o: o, in: bufio.NewScanner(in), out: out}
}

func (r *repl) run(ctx context.Context) error {
	for {
		r.flush()
		line, ok := r.prompt("> ")
		if !ok {
			return r.in.Err()
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "":
			continue
		case "/salir":
			return nil
		case "/ver":
			err = r.view(ctx, arg)
		case "/agendar":
			err = r.book(ctx, arg)
		case "/cancelar":
			err = r.o.CancelRecord(ctx, arg)
		default:
			_, err = r.o.Submit(ctx, line)
		}
		if err != nil {
			r.report(err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

// flush prints the messages appended since the last call.
func (r *repl) flush() {
	msgs := r.o.Render().Messages
	for _, m := range msgs[r.printed:] {
		who := "Asistente"
		if m.Sender == models.SenderUser {
			who = "Tú"
		}
		fmt.Fprintf(r.out, "[%s] %s, %s\n  %s\n", m.ID, who, humanize.Time(m.Timestamp), m.Text)
		if m.Action != nil {
			switch m.Action.Kind {
			case models.ActionCreateAppointment:
				fmt.Fprintf(r.out, "  escribe /agendar %s para completar el formulario\n", m.ID)
			case models.ActionViewAppointments:
				fmt.Fprintf(r.out, "  escribe /ver %s para ver tus citas\n", m.ID)
			}
		}
	}
	r.printed = len(msgs)
}

func (r *repl) view(ctx context.Context, id string) error {
	if err := r.o.ActivateView(ctx, id); err != nil {
		return err
	}
	r.flush()
	mv, err := r.o.RenderMessage(id)
	if err != nil {
		return err
	}
	if len(mv.Records) == 0 {
		fmt.Fprintln(r.out, "  No tienes citas registradas.")
		return nil
	}
	for _, rec := range mv.Records {
		fmt.Fprintf(r.out, "  - [%s] %s %s, %s (%s), %s, %s\n",
			rec.ID, rec.Date, rec.Time, rec.Doctor, rec.Specialty, rec.Patient, rec.Status)
	}
	return nil
}

func (r *repl) book(ctx context.Context, id string) error {
	ed, err := r.o.OpenCreateEditor(id)
	if err != nil {
		return err
	}
	defer ed.Close()

	for {
		form := ed.State().Form
		for _, f := range fieldPrompts {
			current := fieldValue(form, f.name)
			label := f.label + ": "
			if current != "" {
				label = fmt.Sprintf("%s [%s]: ", f.label, current)
			}
			value, ok := r.prompt(label)
			if !ok {
				return r.in.Err()
			}
			if value = strings.TrimSpace(value); value != "" {
				if err := ed.Set(f.name, value); err != nil {
					return err
				}
			}
		}

		_, err := ed.Submit(ctx)
		if err == nil {
			return nil
		}
		fmt.Fprintf(r.out, "  Error: %s\n", ed.ErrorText())
		answer, ok := r.prompt("¿Reintentar? (s/n): ")
		if !ok || !strings.EqualFold(strings.TrimSpace(answer), "s") {
			return nil
		}
	}
}

func (r *repl) report(err error) {
	switch {
	case errors.Is(err, conversation.ErrMessageNotFound):
		fmt.Fprintln(r.out, "  No existe ese mensaje.")
	case errors.Is(err, conversation.ErrNoAffordance):
		fmt.Fprintln(r.out, "  Ese mensaje no ofrece esa acción.")
	case errors.Is(err, conversation.ErrBusy):
		fmt.Fprintln(r.out, "  Espera a que termine la respuesta anterior.")
	default:
		// Store failures are already in the transcript.
	}
}

func fieldValue(f editor.Form, name string) string {
	switch name {
	case editor.FieldPatient:
		return f.Patient
	case editor.FieldSpecialty:
		return f.Specialty
	case editor.FieldDate:
		return f.Date
	case editor.FieldTime:
		return f.Time
	case editor.FieldDoctor:
		return f.Doctor
	case editor.FieldNotes:
		return f.Notes
	}
	return ""
}
