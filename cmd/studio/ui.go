package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func printTone(tone, msg string) {
	switch tone {
	case "good":
		printSuccess(msg)
	case "warn":
		printWarn(msg)
	case "bad":
		printError(msg)
	default:
		printInfo(msg)
	}
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

// stringOrPrompt uses v when set and otherwise asks on a terminal.
func stringOrPrompt(v, label string) (string, error) {
	if v = strings.TrimSpace(v); v != "" {
		return v, nil
	}
	if !interactive() {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return promptRequired(label)
}

func choiceOrPrompt(v, label string, options []string) (string, error) {
	if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
		for _, o := range options {
			if o == v {
				return v, nil
			}
		}
		return "", fmt.Errorf("%s must be one of %s", strings.ToLower(label), strings.Join(options, ", "))
	}
	if !interactive() {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return promptChoice(label, options, options[0])
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + comma(int64(math.Round(v)))
}

func signedMoney(v float64) string {
	if v > 0 {
		return "+" + money(v)
	}
	return money(v)
}

func colorizeMoney(v float64) string {
	switch {
	case v > 0:
		return success.Sprint(signedMoney(v))
	case v < 0:
		return danger.Sprint(signedMoney(v))
	default:
		return neutral.Sprint(money(v))
	}
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func meter(v float64) string {
	switch {
	case v >= 70:
		return danger.Sprintf("%3.0f", v)
	case v >= 40:
		return warn.Sprintf("%3.0f", v)
	default:
		return success.Sprintf("%3.0f", v)
	}
}

func renderStatus(state, estimate gjson.Result) {
	now := state.Get("now")
	accent.Printf("Studio  Y%d W%d D%d  (%s)\n", now.Get("year").Int(), now.Get("week").Int(), now.Get("day").Int(), now.Get("dateISO").String())
	if reason := state.Get("flags.gameOver").String(); reason != "" {
		printError("GAME OVER: " + reason)
	}
	clock := "running"
	if state.Get("time.paused").Bool() {
		clock = "paused"
	}
	printInfo(fmt.Sprintf("Clock %s at %.2fx", clock, state.Get("time.speed").Float()))

	res := state.Get("resources")
	fmt.Printf("Cash        %s  (daily est. %s)\n", money(res.Get("cash").Float()), colorizeMoney(estimate.Get("net").Float()))
	fmt.Printf("Reputation  %3.0f   Network %3.0f\n", res.Get("reputation").Float(), res.Get("network").Float())
	fmt.Printf("Community   %s   Fans %s   TP %.0f\n", comma(res.Get("community").Int()), comma(res.Get("fans").Int()), res.Get("techPoints").Float())
	fmt.Printf("Risk        security %s  compliance %s\n", meter(res.Get("securityRisk").Float()), meter(res.Get("complianceRisk").Float()))
	fmt.Printf("Active      %d projects, %d products, %d inbox\n",
		len(state.Get("active.projects").Array()),
		len(state.Get("active.products").Array()),
		len(state.Get("inbox.items").Array()))

	logs := state.Get("log").Array()
	if len(logs) > 0 {
		accent.Println("Recent")
		for i, e := range logs {
			if i == 5 {
				break
			}
			printTone(e.Get("tone").String(), fmt.Sprintf("  %-12s %s", e.Get("at").String(), e.Get("text").String()))
		}
	}
}

func renderProjects(list gjson.Result) {
	items := list.Array()
	if len(items) == 0 {
		printInfo("No active projects.")
		return
	}
	accent.Printf("%-36s  %-22s  %-6s  %-8s  %s\n", "ID", "TITLE", "STAGE", "PROGRESS", "STATE")
	for _, p := range items {
		stateLabel := "draft"
		switch {
		case p.Get("started").Bool() && p.Get("stagePaused").Bool():
			stateLabel = warn.Sprint("needs setup")
		case p.Get("started").Bool():
			stateLabel = success.Sprint("building")
		}
		fmt.Printf("%-36s  %-22s  %-6d  %7.1f%%  %s\n",
			p.Get("id").String(),
			truncate(p.Get("title").String(), 22),
			p.Get("stageIndex").Int(),
			p.Get("stageProgress").Float(),
			stateLabel)
	}
}

func renderProjectView(v gjson.Result) {
	p := v.Get("project")
	accent.Printf("%s  (%s/%s/%s/%s, scale %d)\n", p.Get("title").String(),
		p.Get("archetype").String(), p.Get("narrative").String(), p.Get("chain").String(), p.Get("audience").String(),
		p.Get("scale").Int())
	if c := p.Get("contract"); c.Exists() {
		printInfo(fmt.Sprintf("Contract for %s: fee %s, due week %d", c.Get("client").String(), money(c.Get("fee").Float()), c.Get("deadlineWeek").Int()))
	}
	st := v.Get("stage")
	fmt.Printf("Stage %d (%s): %.1f%%  rate %.2f/day", st.Get("index").Int(), st.Get("key").String(), st.Get("progress").Float(), st.Get("ratePerDay").Float())
	if st.Get("paused").Bool() {
		fmt.Print(warn.Sprint("  paused"))
	}
	fmt.Println()
	fmt.Printf("Budget %s, spent %s, burn %s/day\n", money(p.Get("budget").Float()), money(p.Get("costSpent").Float()), money(v.Get("dailyBurn").Float()))
	fmt.Printf("Product score %.0f  Tech score %.0f\n", v.Get("productScore").Float(), v.Get("techScore").Float())
	combo := v.Get("combo")
	fmt.Printf("Combo: narrative %s, chain %s, audience %s\n", combo.Get("narrative").String(), combo.Get("chain").String(), combo.Get("audience").String())
}

func renderProducts(list gjson.Result) {
	items := list.Array()
	if len(items) == 0 {
		printInfo("No live products.")
		return
	}
	accent.Printf("%-36s  %-20s  %10s  %12s  %12s  %12s\n", "ID", "TITLE", "DAU", "TVL", "REVENUE", "PROFIT")
	for _, p := range items {
		k := p.Get("kpi")
		fmt.Printf("%-36s  %-20s  %10s  %12s  %12s  %s\n",
			p.Get("id").String(),
			truncate(p.Get("title").String(), 20),
			comma(k.Get("dau").Int()),
			money(k.Get("tvl").Float()),
			money(k.Get("revenue").Float()),
			colorizeMoney(k.Get("profit").Float()))
	}
}

func renderTeam(team gjson.Result) {
	accent.Printf("Payroll %s/week\n", money(team.Get("payrollWeekly").Float()))
	row := func(m gjson.Result) {
		sk := m.Get("skills")
		fmt.Printf("  %-36s  %-14s  %s/wk  prod %2.0f des %2.0f proto %2.0f sc %2.0f infra %2.0f sec %2.0f grow %2.0f comp %2.0f  %s\n",
			m.Get("id").String(), m.Get("name").String(), money(m.Get("salaryWeekly").Float()),
			sk.Get("product").Float(), sk.Get("design").Float(), sk.Get("protocol").Float(), sk.Get("contract").Float(),
			sk.Get("infra").Float(), sk.Get("security").Float(), sk.Get("growth").Float(), sk.Get("compliance").Float(),
			m.Get("perk").String())
	}
	accent.Println("Members")
	for _, m := range team.Get("members").Array() {
		row(m)
	}
	accent.Println("Candidates")
	for _, m := range team.Get("candidates").Array() {
		row(m)
	}
}

func renderResearch(r gjson.Result) {
	accent.Printf("Tech points %.0f\n", r.Get("techPoints").Float())
	if t := r.Get("task"); t.Exists() && t.Type != gjson.Null {
		printInfo(fmt.Sprintf("In progress: %s %.0f/%.0fh", t.Get("nodeId").String(), t.Get("hoursDone").Float(), t.Get("hoursTotal").Float()))
	}
	for _, n := range r.Get("nodes").Array() {
		status := n.Get("status").String()
		line := fmt.Sprintf("  %-22s %-10s %5.0f TP  %4.0fh  %s/%s", n.Get("id").String(), status, n.Get("costNow").Float(), n.Get("hoursNow").Float(), n.Get("kind").String(), n.Get("skill").String())
		switch status {
		case "done":
			printSuccess(line)
		case "locked":
			printInfo(line)
		default:
			fmt.Println(line)
		}
	}
}

func renderMarket(m gjson.Result) {
	leads := m.Get("leads").Array()
	if len(leads) == 0 {
		printInfo("No client leads this week.")
	} else {
		accent.Printf("%-36s  %-18s  %-10s  %10s  %s\n", "LEAD", "CLIENT", "TYPE", "FEE", "DEADLINE")
		for _, l := range leads {
			fmt.Printf("%-36s  %-18s  %-10s  %10s  %dw\n",
				l.Get("id").String(), truncate(l.Get("client").String(), 18), l.Get("archetype").String(),
				money(l.Get("fee").Float()), l.Get("deadlineWeeks").Int())
		}
	}
	if n := m.Get("negotiation"); n.Exists() {
		renderNegotiation(n)
		printInfo("Moves: " + strings.Join(stringsOf(m.Get("moves")), ", "))
	}
}

func renderNegotiation(n gjson.Result) {
	t := n.Get("terms")
	st := n.Get("stats")
	accent.Printf("Negotiating with %s, round %d/%d\n", n.Get("client").String(), n.Get("round").Int(), n.Get("maxRounds").Int())
	fmt.Printf("Terms: fee %s, deadline %dw, deposit %.0f%%, scope %d\n",
		money(t.Get("fee").Float()), t.Get("deadlineWeeks").Int(), t.Get("depositPct").Float()*100, t.Get("scope").Int())
	fmt.Printf("Patience %.0f  Trust %.0f  Pressure %.0f\n", st.Get("patience").Float(), st.Get("trust").Float(), st.Get("pressure").Float())
	if last := n.Get("last").String(); last != "" {
		printInfo(last)
	}
}

func renderInbox(items gjson.Result) {
	list := items.Array()
	if len(list) == 0 {
		printInfo("Inbox is empty.")
		return
	}
	for _, it := range list {
		accent.Printf("%s  %s", it.Get("id").String(), it.Get("title").String())
		fmt.Printf("  (expires in %dw)\n", it.Get("expiresInWeeks").Int())
		it.Get("choices").ForEach(func(key, label gjson.Result) bool {
			fmt.Printf("    [%s] %s\n", key.String(), label.String())
			return true
		})
	}
}

func stringsOf(r gjson.Result) []string {
	out := []string{}
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}
