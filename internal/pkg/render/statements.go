package render

import (
	"fmt"

	"github.com/nikolalohinski/gonja/exec"
	"github.com/nikolalohinski/gonja/nodes"
	"github.com/nikolalohinski/gonja/parser"
	"github.com/nikolalohinski/gonja/tokens"
)

func statements() exec.StatementSet {
	return exec.StatementSet{
		"do": parseDo,
	}
}

// doStatement evaluates an expression and discards the result:
// {% do x | mandatory("x must be set") %}.
type doStatement struct {
	location   *tokens.Token
	expression nodes.Expression
}

func (s *doStatement) Position() *tokens.Token { return s.location }

func (s *doStatement) String() string {
	return fmt.Sprintf("DoStmt(Line=%d Col=%d)", s.location.Line, s.location.Col)
}

func (s *doStatement) Execute(r *exec.Renderer, _ *nodes.StatementBlock) error {
	if v := r.Eval(s.expression); v.IsError() {
		return v
	}
	return nil
}

func parseDo(p *parser.Parser, args *parser.Parser) (nodes.Statement, error) {
	stmt := &doStatement{location: p.Current()}
	if args.End() {
		return nil, args.Error("Tag 'do' requires an expression.", nil)
	}
	expr, err := args.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !args.End() {
		return nil, args.Error("Malformed 'do'-tag args.", args.Current())
	}
	stmt.expression = expr
	return stmt, nil
}
