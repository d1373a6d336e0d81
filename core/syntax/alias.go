package syntax

// expandAlias replaces the name of cmd with its alias, if it has one. The
// replacement is printed back to text and parsed again, so aliases inside it
// expand too. An alias is never expanded while its own text is being parsed,
// which stops self and mutual recursion.
func (p *Parser) expandAlias(cmd *SimpleCommand) (Command, error) {
	if p.aliases == nil {
		return cmd, nil
	}
	name, ok := cmd.Name()
	if !ok || p.expanding[name] {
		return cmd, nil
	}
	replacement, ok := p.aliases.LookupAlias(name)
	if !ok {
		return cmd, nil
	}

	var expanded Command
	if replacement != nil {
		var err error
		expanded, err = p.child(name, replacement.String()).ParseAll()
		if err != nil {
			return nil, err
		}
	}
	return splice(expanded, cmd), nil
}

// ParseAlias parses text as the replacement for alias name. Other aliases in
// the text are expanded, name itself is not.
func ParseAlias(name, text string, aliases AliasTable) (Command, error) {
	root := &Parser{aliases: aliases}
	return root.child(name, text).ParseAll()
}

// child returns a parser for the text of alias name.
func (p *Parser) child(name, text string) *Parser {
	expanding := make(map[string]bool, len(p.expanding)+1)
	for k := range p.expanding {
		expanding[k] = true
	}
	expanding[name] = true

	return &Parser{
		lx:        NewLexer(text),
		aliases:   p.aliases,
		expanding: expanding,
	}
}

// splice joins an alias replacement with the command it came from. The
// command's assignments go in front of the first simple command of the
// replacement, its remaining arguments and redirections after the last.
func splice(replacement Command, cmd *SimpleCommand) Command {
	rest := cmd.Args[1:]

	if replacement == nil {
		out := &SimpleCommand{Assigns: cmd.Assigns, Args: rest, Redirs: cmd.Redirs}
		if out.Empty() {
			return nil
		}
		return out
	}

	first, last := firstSimple(replacement), lastSimple(replacement)
	first.Assigns = append(append([]*Assign(nil), cmd.Assigns...), first.Assigns...)
	last.Args = append(last.Args, rest...)
	last.Redirs = append(last.Redirs, cmd.Redirs...)
	return replacement
}

func firstSimple(cmd Command) *SimpleCommand {
	switch cmd := cmd.(type) {
	case *Pipeline:
		return cmd.Stages[0]
	case *Sequence:
		return firstSimple(cmd.Items[0].Cmd)
	}
	return cmd.(*SimpleCommand)
}

func lastSimple(cmd Command) *SimpleCommand {
	switch cmd := cmd.(type) {
	case *Pipeline:
		return cmd.Stages[len(cmd.Stages)-1]
	case *Sequence:
		return lastSimple(cmd.Items[len(cmd.Items)-1].Cmd)
	}
	return cmd.(*SimpleCommand)
}
