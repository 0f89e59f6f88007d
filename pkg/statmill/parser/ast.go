package parser

import (
	"bytes"
	"strings"
)

// Node is implemented by every AST node. CountNodes reports the size of the
// subtree rooted at the node, which callers use to bound formula complexity.
type Node interface {
	TokenLiteral() string
	String() string
	CountNodes() int
}

type Expression interface {
	Node
	expressionNode()
}

type Identifier struct {
	Token Token // the IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) CountNodes() int      { return 1 }

type IntegerLiteral struct {
	Token Token // the INT token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }
func (il *IntegerLiteral) CountNodes() int      { return 1 }

type FloatLiteral struct {
	Token Token // the FLOAT token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }
func (fl *FloatLiteral) CountNodes() int      { return 1 }

type StringLiteral struct {
	Token Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "'" + sl.Value + "'" }
func (sl *StringLiteral) CountNodes() int      { return 1 }

type InfixExpression struct {
	Token    Token // the operator token: +, -, *, /
	Left     Expression
	Operator string
	Right    Expression
}

func (oe *InfixExpression) expressionNode()      {}
func (oe *InfixExpression) TokenLiteral() string { return oe.Token.Literal }
func (oe *InfixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	if oe.Left != nil {
		out.WriteString(oe.Left.String())
	}
	out.WriteString(" " + oe.Operator + " ")
	if oe.Right != nil {
		out.WriteString(oe.Right.String())
	}
	out.WriteString(")")
	return out.String()
}

func (oe *InfixExpression) CountNodes() int {
	n := 1
	if oe.Left != nil {
		n += oe.Left.CountNodes()
	}
	if oe.Right != nil {
		n += oe.Right.CountNodes()
	}
	return n
}

type PrefixExpression struct {
	Token    Token // the prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(pe.Operator)
	if pe.Right != nil {
		out.WriteString(pe.Right.String())
	}
	out.WriteString(")")
	return out.String()
}

func (pe *PrefixExpression) CountNodes() int {
	n := 1
	if pe.Right != nil {
		n += pe.Right.CountNodes()
	}
	return n
}

type CallExpression struct {
	Token     Token      // the '(' token
	Function  Expression // always an Identifier in this grammar
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	var args []string
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	if ce.Function != nil {
		out.WriteString(ce.Function.String())
	}
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

func (ce *CallExpression) CountNodes() int {
	n := 1
	if ce.Function != nil {
		n += ce.Function.CountNodes()
	}
	for _, a := range ce.Arguments {
		if a != nil {
			n += a.CountNodes()
		}
	}
	return n
}
