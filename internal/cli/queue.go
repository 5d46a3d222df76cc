package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/catalog"
)

// NewQueueCommand creates the queue command group.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage queue displays",
	}

	cmd.AddCommand(newQueueListCommand(rootOpts))
	cmd.AddCommand(newQueueAddCommand(rootOpts))
	cmd.AddCommand(newQueueUpdateCommand(rootOpts))
	cmd.AddCommand(newQueueDeleteCommand(rootOpts))

	return cmd
}

func newQueueListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queues in name order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			queues, err := a.svc.Queues(cmd.Context())
			if err != nil {
				return f.Fail("list queues", err)
			}
			return f.Result(queues, func(w io.Writer) { writeQueues(w, queues) })
		},
	}
}

func writeQueues(w io.Writer, queues []catalog.Queue) {
	if len(queues) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No queues."))
		return
	}

	rows := make([][]string, 0, len(queues))
	for _, q := range queues {
		rows = append(rows, []string{
			q.ID,
			q.Name,
			strconv.Itoa(q.Number),
			catalog.ColorHex(q.BackgroundColor),
			fmt.Sprintf("%d/%d", q.VideoVolume, q.SoundVolume),
			strconv.Itoa(q.Velocity),
			yesNo(q.HasNews),
		})
	}
	writeTable(w, []string{"ID", "NAME", "NUMBER", "COLOR", "VIDEO/SOUND", "VELOCITY", "NEWS"}, rows)
}

func writeQueue(w io.Writer, verb string, q catalog.Queue) {
	fmt.Fprintf(w, "%s %s: %s (number %d, %s)\n", verb, q.ID, q.Name, q.Number, catalog.ColorHex(q.BackgroundColor))
}

// queueFlags are the editable queue fields as flags; only set flags apply.
type queueFlags struct {
	name        string
	number      int
	icon        int
	color       string
	videoURL    string
	videoVolume int
	soundVolume int
	velocity    int
	hasNews     bool
}

func (qf *queueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&qf.name, "name", "", "queue name shown on the display")
	cmd.Flags().IntVar(&qf.number, "number", 0, "number currently served")
	cmd.Flags().IntVar(&qf.icon, "icon", 0, "icon index in the TV app")
	cmd.Flags().StringVar(&qf.color, "color", "", `background color: "#rrggbb", "#aarrggbb" or decimal ARGB`)
	cmd.Flags().StringVar(&qf.videoURL, "video-url", "", "stream played beside the number")
	cmd.Flags().IntVar(&qf.videoVolume, "video-volume", 0, "video volume 0-100")
	cmd.Flags().IntVar(&qf.soundVolume, "sound-volume", 0, "call sound volume 0-100")
	cmd.Flags().IntVar(&qf.velocity, "velocity", 0, "news ticker speed")
	cmd.Flags().BoolVar(&qf.hasNews, "news", false, "show the news ticker")
}

func (qf *queueFlags) apply(cmd *cobra.Command, in *catalog.QueueInput) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = qf.name
	}
	if changed("number") {
		in.Number = qf.number
	}
	if changed("icon") {
		in.Icon = qf.icon
	}
	if changed("color") {
		color, err := catalog.ParseColor(qf.color)
		if err != nil {
			return err
		}
		in.BackgroundColor = color
	}
	if changed("video-url") {
		in.VideoURL = qf.videoURL
	}
	if changed("video-volume") {
		in.VideoVolume = qf.videoVolume
	}
	if changed("sound-volume") {
		in.SoundVolume = qf.soundVolume
	}
	if changed("velocity") {
		in.Velocity = qf.velocity
	}
	if changed("news") {
		in.HasNews = qf.hasNews
	}
	return nil
}

func newQueueAddCommand(rootOpts *RootOptions) *cobra.Command {
	var qf queueFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a queue",
		Long: `Create a queue. Unset fields take the new-queue defaults: red background,
the default news stream, sound volume 100, velocity 50, news ticker on.`,
		Example: `  precario queue add --name Talho --number 1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			in := catalog.DefaultQueueInput()
			if err := qf.apply(cmd, &in); err != nil {
				return usageError(f, err.Error())
			}

			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := a.svc.CreateQueue(cmd.Context(), in)
			if err != nil {
				return f.Fail("create queue", err)
			}
			return f.Result(q, func(w io.Writer) { writeQueue(w, "Created", q) })
		},
	}
	qf.register(cmd)

	return cmd
}

func newQueueUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var qf queueFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change fields of a queue",
		Example: `  precario queue update queue_1700000000000 --number 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.svc.Queue(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("update queue", err)
			}
			in := current.Input()
			if err := qf.apply(cmd, &in); err != nil {
				return usageError(f, err.Error())
			}

			q, err := a.svc.UpdateQueue(cmd.Context(), args[0], in)
			if err != nil {
				return f.Fail("update queue", err)
			}
			return f.Result(q, func(w io.Writer) { writeQueue(w, "Updated", q) })
		},
	}
	qf.register(cmd)

	return cmd
}

func newQueueDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteQueue(cmd.Context(), args[0]); err != nil {
				return f.Fail("delete queue", err)
			}
			return f.Result(map[string]string{"id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}
