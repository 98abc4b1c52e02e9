package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	cl "studiosim/internal/cli"
	"studiosim/internal/config"
	"studiosim/internal/game"
)

func main() {
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var apiFlag string

	root := &cobra.Command{
		Use:          "studio",
		Short:        "Crypto studio simulation client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiFlag, "api", "", "API base URL (overrides STUDIO_API_URL and the saved session)")
	apiBase := func() string {
		return cl.ResolveBaseURL(apiFlag, cfg.APIBaseURL, config.DefaultAPIURL)
	}

	root.AddCommand(
		newConnectCmd(),
		newStatusCmd(apiBase),
		newClockCmd(apiBase),
		newProjectCmd(apiBase),
		newProductCmd(apiBase),
		newTeamCmd(apiBase),
		newResearchCmd(apiBase),
		newMarketCmd(apiBase),
		newInboxCmd(apiBase),
		newQueueCmd(apiBase),
		newRecipeCmd(apiBase),
		newSaveCmd(apiBase),
		newWatchCmd(apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase func() string) *cl.Client {
	return cl.NewClient(apiBase(), nil)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <url>",
		Short: "Check a studio API and remember it for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := strings.TrimRight(strings.TrimSpace(args[0]), "/")
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if err := cl.NewClient(base, nil).Health(ctx); err != nil {
				return fmt.Errorf("studio API not reachable at %s: %w", base, err)
			}
			sess, err := cl.LoadSession()
			if err != nil {
				return err
			}
			sess.APIBaseURL = base
			if err := cl.SaveSession(sess); err != nil {
				return err
			}
			printSuccess("Connected to " + base)
			return nil
		},
	}
}

func newStatusCmd(apiBase func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the studio dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			client := newClient(apiBase)
			st, err := client.State(ctx)
			if err != nil {
				return err
			}
			est, err := client.CashEstimate(ctx)
			if err != nil {
				return err
			}
			renderStatus(st.Get("state"), est.Get("estimate"))
			return nil
		},
	}
}

func newClockCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Pause, resume, change speed or fast-forward",
	}
	run := func(cmd *cobra.Command, action string, speed, hours float64) error {
		ctx, cancel := withTimeout(cmd)
		defer cancel()
		out, err := newClient(apiBase).Clock(ctx, action, speed, hours)
		if err != nil {
			return err
		}
		now := out.Get("now")
		msg := fmt.Sprintf("%s  speed %.2fx", now.Get("dateISO").String(), out.Get("time.speed").Float())
		if out.Get("time.paused").Bool() {
			msg += "  (paused)"
		}
		if d := out.Get("days").Int(); d > 0 {
			msg += fmt.Sprintf("  %d day(s) settled", d)
		}
		printSuccess(msg)
		if reason := out.Get("gameOver").String(); reason != "" {
			printError("GAME OVER: " + reason)
		}
		return nil
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "pause",
			Short: "Pause the clock",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return run(cmd, "pause", 0, 0) },
		},
		&cobra.Command{
			Use:   "resume",
			Short: "Resume the clock",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return run(cmd, "resume", 0, 0) },
		},
		&cobra.Command{
			Use:   "speed <multiplier>",
			Short: "Set the clock speed (0.25 to 16)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid speed %q", args[0])
				}
				return run(cmd, "speed", v, 0)
			},
		},
		&cobra.Command{
			Use:   "advance <hours>",
			Short: "Fast-forward simulated hours",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid hours %q", args[0])
				}
				return run(cmd, "advance", 0, v)
			},
		},
	)
	return cmd
}

// projectID takes the id from args or falls back to the last project
// created from this machine.
func projectID(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	sess, err := cl.LoadSession()
	if err != nil {
		return "", err
	}
	if sess.LastProject == "" {
		return "", fmt.Errorf("project id required")
	}
	return sess.LastProject, nil
}

func newProjectCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create and run projects",
	}
	cmd.AddCommand(
		newProjectCreateCmd(apiBase),
		&cobra.Command{
			Use:   "list",
			Short: "List active projects",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).Projects(ctx)
				if err != nil {
					return err
				}
				renderProjects(out.Get("projects"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [id]",
			Short: "Show a project's stage, scores and combo",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := projectID(args)
				if err != nil {
					return err
				}
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).Project(ctx, id)
				if err != nil {
					return err
				}
				renderProjectView(out.Get("view"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "start [id]",
			Short: "Pay the kickoff and start a project",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := projectID(args)
				if err != nil {
					return err
				}
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				if _, err := newClient(apiBase).StartProject(ctx, id); err != nil {
					return err
				}
				printSuccess("Project started. Configure stage 0 to begin work.")
				return nil
			},
		},
		newProjectStageCmd(apiBase),
		newProjectTeamCmd(apiBase),
		&cobra.Command{
			Use:   "abandon [id]",
			Short: "Abandon a project",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := projectID(args)
				if err != nil {
					return err
				}
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				if _, err := newClient(apiBase).AbandonProject(ctx, id); err != nil {
					return err
				}
				printWarn("Project abandoned.")
				return nil
			},
		},
	)
	return cmd
}

func newProjectCreateCmd(apiBase func() string) *cobra.Command {
	var in game.ProjectConfig
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Title, err = stringOrPrompt(in.Title, "Title"); err != nil {
				return err
			}
			if in.Archetype, err = choiceOrPrompt(in.Archetype, "Archetype", game.Archetypes); err != nil {
				return err
			}
			if in.Narrative, err = choiceOrPrompt(in.Narrative, "Narrative", game.Narratives); err != nil {
				return err
			}
			if in.Chain, err = choiceOrPrompt(in.Chain, "Chain", game.Chains); err != nil {
				return err
			}
			if in.Audience, err = choiceOrPrompt(in.Audience, "Audience", game.Audiences); err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).CreateProject(ctx, in)
			if err != nil {
				return err
			}
			id := out.Get("project.id").String()
			sess, err := cl.LoadSession()
			if err == nil {
				sess.LastProject = id
				_ = cl.SaveSession(sess)
			}
			printSuccess(fmt.Sprintf("Created %q (%s)", in.Title, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "project title")
	cmd.Flags().StringVar(&in.Archetype, "archetype", "", strings.Join(game.Archetypes, "|"))
	cmd.Flags().StringVar(&in.Narrative, "narrative", "", strings.Join(game.Narratives, "|"))
	cmd.Flags().StringVar(&in.Chain, "chain", "", strings.Join(game.Chains, "|"))
	cmd.Flags().StringVar(&in.Audience, "audience", "", strings.Join(game.Audiences, "|"))
	cmd.Flags().IntVar(&in.Scale, "scale", 1, "scale 1-3")
	cmd.Flags().Float64Var(&in.Budget, "budget", 50_000, "budget in dollars")
	return cmd
}

func newProjectStageCmd(apiBase func() string) *cobra.Command {
	var prefs []string
	cmd := &cobra.Command{
		Use:   "stage [id]",
		Short: "Set the sliders for the current stage (--pref dim=value)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := projectID(args)
			if err != nil {
				return err
			}
			parsed, err := parsePrefs(prefs)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if _, err := newClient(apiBase).ConfigureStage(ctx, id, parsed); err != nil {
				return err
			}
			printSuccess("Stage configured.")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&prefs, "pref", nil, "slider as dim=value, repeatable")
	return cmd
}

func parsePrefs(raw []string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid pref %q, want dim=value", kv)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pref value %q", kv)
		}
		out[strings.TrimSpace(k)] = f
	}
	return out, nil
}

func newProjectTeamCmd(apiBase func() string) *cobra.Command {
	var stage int
	var role, member string
	cmd := &cobra.Command{
		Use:   "team [id]",
		Short: "Assign (or clear with --member '') a role for a stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := projectID(args)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if _, err := newClient(apiBase).SetProjectTeam(ctx, id, stage, role, member); err != nil {
				return err
			}
			printSuccess("Team updated.")
			return nil
		},
	}
	cmd.Flags().IntVar(&stage, "stage", 0, "stage index 0-2")
	cmd.Flags().StringVar(&role, "role", "", "role key")
	cmd.Flags().StringVar(&member, "member", "", "team member id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newProductCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Operate live products",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List live products",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).Products(ctx)
				if err != nil {
					return err
				}
				renderProducts(out.Get("products"))
				return nil
			},
		},
		newProductOpsCmd(apiBase),
		newProductAbandonCmd(apiBase),
	)
	return cmd
}

func newProductOpsCmd(apiBase func() string) *cobra.Command {
	var ops game.Ops
	cmd := &cobra.Command{
		Use:   "ops <id>",
		Short: "Change fees, buyback, emissions and weekly budgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			client := newClient(apiBase)
			list, err := client.Products(ctx)
			if err != nil {
				return err
			}
			current := list.Get(fmt.Sprintf(`products.#(id==%q).ops`, args[0]))
			if !current.Exists() {
				return fmt.Errorf("product %s not found", args[0])
			}
			var merged game.Ops
			if err := json.Unmarshal([]byte(current.Raw), &merged); err != nil {
				return err
			}
			f := cmd.Flags()
			set := func(name string, dst *float64, v float64) {
				if f.Changed(name) {
					*dst = v
				}
			}
			set("fee-bps", &merged.FeeRateBps, ops.FeeRateBps)
			set("buyback", &merged.BuybackPct, ops.BuybackPct)
			set("emissions", &merged.Emissions, ops.Emissions)
			set("incentives", &merged.Budgets.Incentives, ops.Budgets.Incentives)
			set("marketing", &merged.Budgets.Marketing, ops.Budgets.Marketing)
			set("security", &merged.Budgets.Security, ops.Budgets.Security)
			set("infra", &merged.Budgets.Infra, ops.Budgets.Infra)
			set("compliance", &merged.Budgets.Compliance, ops.Budgets.Compliance)
			set("support", &merged.Budgets.Support, ops.Budgets.Support)
			set("referral", &merged.Budgets.Referral, ops.Budgets.Referral)

			out, err := client.UpdateOps(ctx, args[0], merged)
			if err != nil {
				return err
			}
			o := out.Get("ops")
			printSuccess(fmt.Sprintf("Ops set: fee %.0f bps, buyback %.0f%%, emissions %.2f",
				o.Get("feeRateBps").Float(), o.Get("buybackPct").Float(), o.Get("emissions").Float()))
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&ops.FeeRateBps, "fee-bps", 0, "fee rate in basis points")
	f.Float64Var(&ops.BuybackPct, "buyback", 0, "buyback share of fee revenue, percent")
	f.Float64Var(&ops.Emissions, "emissions", 0, "token emissions 0-1")
	f.Float64Var(&ops.Budgets.Incentives, "incentives", 0, "weekly incentives budget")
	f.Float64Var(&ops.Budgets.Marketing, "marketing", 0, "weekly marketing budget")
	f.Float64Var(&ops.Budgets.Security, "security", 0, "weekly security budget")
	f.Float64Var(&ops.Budgets.Infra, "infra", 0, "weekly infra budget")
	f.Float64Var(&ops.Budgets.Compliance, "compliance", 0, "weekly compliance budget")
	f.Float64Var(&ops.Budgets.Support, "support", 0, "weekly support budget")
	f.Float64Var(&ops.Budgets.Referral, "referral", 0, "weekly referral budget")
	return cmd
}

func newProductAbandonCmd(apiBase func() string) *cobra.Command {
	var policy, confirm string
	cmd := &cobra.Command{
		Use:   "abandon <id>",
		Short: "Sunset or rug a live product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy = strings.ToLower(strings.TrimSpace(policy))
			if policy == game.PolicyRug && confirm == "" {
				if !interactive() {
					return fmt.Errorf("--confirm with the product title is required to rug")
				}
				printWarn("Rugging burns reputation, fans and community. Type the product title to confirm.")
				var err error
				if confirm, err = promptRequired("Title"); err != nil {
					return err
				}
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			if _, err := newClient(apiBase).AbandonProduct(ctx, args[0], policy, confirm); err != nil {
				return err
			}
			if policy == game.PolicyRug {
				printError("Product rugged.")
			} else {
				printWarn("Product sunset.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", game.PolicySunset, "sunset|rug")
	cmd.Flags().StringVar(&confirm, "confirm", "", "product title, required for rug")
	return cmd
}

func newTeamCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Show the team and candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Team(ctx)
			if err != nil {
				return err
			}
			renderTeam(out.Get("team"))
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "hire <candidate-id>",
			Short: "Hire a candidate",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).Hire(ctx, args[0])
				if err != nil {
					return err
				}
				printSuccess("Hired " + out.Get("member.name").String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "fire <member-id>",
			Short: "Let a team member go",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				if _, err := newClient(apiBase).Fire(ctx, args[0]); err != nil {
					return err
				}
				printWarn("Team member let go.")
				return nil
			},
		},
	)
	return cmd
}

func newResearchCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Show the research tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Research(ctx)
			if err != nil {
				return err
			}
			renderResearch(out.Get("research"))
			return nil
		},
	}
	var assignee, target string
	start := &cobra.Command{
		Use:   "start <node-id>",
		Short: "Start a research task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).StartResearch(ctx, args[0], assignee, target)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Research started: %s (%.0fh)", out.Get("task.nodeId").String(), out.Get("task.hoursTotal").Float()))
			return nil
		},
	}
	start.Flags().StringVar(&assignee, "assignee", "", "team member id")
	start.Flags().StringVar(&target, "target", "", "completed project or product id for a postmortem")
	cmd.AddCommand(start)
	return cmd
}

func newMarketCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Show client leads and any open negotiation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Market(ctx)
			if err != nil {
				return err
			}
			renderMarket(out.Get("market"))
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "negotiate <lead-id>",
			Short: "Open a negotiation over a lead",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).StartNegotiation(ctx, args[0])
				if err != nil {
					return err
				}
				renderNegotiation(out.Get("negotiation"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "move <anchor|trade|freeze|wbs|walk|sign|cancel>",
			Short: "Make a negotiation move",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).NegotiationMove(ctx, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				return renderMoveResult(out.Get("result"))
			},
		},
	)
	return cmd
}

func renderMoveResult(res gjson.Result) error {
	msg := res.Get("message").String()
	if !res.Get("done").Bool() {
		printInfo(msg)
		if s := res.Get("session"); s.Exists() {
			renderNegotiation(s)
		}
		return nil
	}
	switch res.Get("outcome").String() {
	case game.OutcomeSign:
		printSuccess(msg)
		if id := res.Get("projectId").String(); id != "" {
			if sess, err := cl.LoadSession(); err == nil {
				sess.LastProject = id
				_ = cl.SaveSession(sess)
			}
			printInfo("Contract project " + id)
		}
	case game.OutcomeCancel:
		printWarn(msg)
	default:
		printError(msg)
	}
	return nil
}

func newInboxCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show pending decisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Inbox(ctx)
			if err != nil {
				return err
			}
			renderInbox(out.Get("items"))
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <item-id> <choice>",
		Short: "Answer an inbox item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).ResolveInbox(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printSuccess(out.Get("msg").String())
			return nil
		},
	})
	return cmd
}

func newQueueCmd(apiBase func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Stage setup requests and delivery ratings",
	}
	showRequest := func(out gjson.Result) {
		req := out.Get("request")
		if req.Type == gjson.Null || !req.Exists() {
			printInfo("No stage waiting for setup.")
			return
		}
		printWarn(fmt.Sprintf("Project %s stage %d needs setup", req.Get("projectId").String(), req.Get("stage").Int()))
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stage",
			Short: "Show the next stage waiting for setup",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).PeekStage(ctx)
				if err != nil {
					return err
				}
				showRequest(out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "pop",
			Short: "Take the next stage request off the queue",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).PopStage(ctx)
				if err != nil {
					return err
				}
				showRequest(out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "ratings",
			Short: "Collect delivery ratings",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				out, err := newClient(apiBase).DrainRatings(ctx)
				if err != nil {
					return err
				}
				ratings := out.Get("ratings").Array()
				if len(ratings) == 0 {
					printInfo("No new ratings.")
				}
				for _, r := range ratings {
					line := fmt.Sprintf("%-14s %2d/10  %s", r.Get("institution").String(), r.Get("score").Int(), r.Get("title").String())
					switch score := r.Get("score").Int(); {
					case score >= 8:
						printSuccess(line)
					case score <= 4:
						printError(line)
					default:
						printInfo(line)
					}
				}
				return nil
			},
		},
	)
	return cmd
}

func newRecipeCmd(apiBase func() string) *cobra.Command {
	var t game.Tags
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Preview what the studio knows about a combo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).RecipePreview(ctx, t)
			if err != nil {
				return err
			}
			c := out.Get("combo")
			if !c.Get("known").Bool() {
				printWarn("Unknown archetype. Run a postmortem to learn its recipe.")
				return nil
			}
			fmt.Printf("narrative %s  chain %s  audience %s\n", c.Get("narrative").String(), c.Get("chain").String(), c.Get("audience").String())
			if m := c.Get("match"); m.Exists() {
				accent.Printf("match %d/100\n", m.Int())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&t.Archetype, "archetype", "", strings.Join(game.Archetypes, "|"))
	cmd.Flags().StringVar(&t.Narrative, "narrative", "", strings.Join(game.Narratives, "|"))
	cmd.Flags().StringVar(&t.Chain, "chain", "", strings.Join(game.Chains, "|"))
	cmd.Flags().StringVar(&t.Audience, "audience", "", strings.Join(game.Audiences, "|"))
	_ = cmd.MarkFlagRequired("archetype")
	return cmd
}

func newSaveCmd(apiBase func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the studio to the server's save store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Save(ctx)
			if err != nil {
				return err
			}
			printSuccess("Saved at " + out.Get("savedAt").String())
			return nil
		},
	}
}

func newWatchCmd(apiBase func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream daily settlements until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			url := newClient(apiBase).StreamURL()
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			if err != nil {
				return fmt.Errorf("connect stream: %w", err)
			}
			defer conn.Close()
			go func() {
				<-ctx.Done()
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				_ = conn.Close()
			}()

			accent.Println("Watching " + url + " (ctrl-c to stop)")
			var lastCash float64
			first := true
			for {
				var r game.DayReport
				if err := conn.ReadJSON(&r); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				delta := ""
				if !first {
					delta = colorizeMoney(r.Resources.Cash - lastCash)
				}
				first = false
				lastCash = r.Resources.Cash
				fmt.Printf("%s  Y%d W%d D%d  cash %s %s  products %d  projects %d\n",
					r.Now.DateISO, r.Now.Year, r.Now.Week, r.Now.Day, money(r.Resources.Cash), delta, r.Products, r.Projects)
				for _, e := range r.Events {
					printWarn("  event: " + e)
				}
				if r.GameOver != "" {
					printError("GAME OVER: " + r.GameOver)
					return nil
				}
			}
		},
	}
}
