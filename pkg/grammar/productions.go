package grammar

// Production identifies one grammar rule. The values index the rule table.
type Production int

const (
	Accept Production = iota // $accept -> program
	Program                  // program -> declaration_list
	DeclListMore             // declaration_list -> declaration_list declaration
	DeclListOne              // declaration_list -> declaration
	DeclVar                  // declaration -> var_declaration
	DeclFun                  // declaration -> fun_declaration
	VarDecl                  // var_declaration -> type_specifier PID ID VAR_DEC ;
	ArrayDecl                // var_declaration -> type_specifier PID ID [ PSIZE NUM ] ARRAY_DEC ;
	TypeInt                  // type_specifier -> PTYPE int
	TypeVoid                 // type_specifier -> void
	FunDecl                  // fun_declaration -> type_specifier PID ID FUNC ( params ) compound_stmt
	ParamsList               // params -> param_list
	ParamsVoid               // params -> void
	ParamListMore            // param_list -> param_list , param
	ParamListOne             // param_list -> param
	ParamScalar              // param -> type_specifier PID ID
	ParamArray               // param -> type_specifier PID ID [ ]
	CompoundStmt             // compound_stmt -> { local_declarations statement_list }
	LocalDeclsMore           // local_declarations -> local_declarations var_declaration
	LocalDeclsEmpty          // local_declarations -> epsilon
	StmtListMore             // statement_list -> statement_list statement
	StmtListEmpty            // statement_list -> epsilon
	StmtExpr                 // statement -> expression_stmt
	StmtCompound             // statement -> compound_stmt
	StmtSelection            // statement -> selection_stmt
	StmtIteration            // statement -> iteration_stmt
	StmtReturn               // statement -> return_stmt
	StmtSwitch               // statement -> switch_stmt
	ExprStmt                 // expression_stmt -> expression ;
	BreakStmt                // expression_stmt -> break BREAK_JP ;
	EmptyStmt                // expression_stmt -> ;
	IfStmt                   // selection_stmt -> if ( expression ) SAVE statement endif
	IfElseStmt               // selection_stmt -> if ( expression ) SAVE statement JPF_SAVE else statement endif
	WhileStmt                // iteration_stmt -> while LABEL_WHILE ( expression ) SAVE statement
	ReturnVoid               // return_stmt -> return ;
	ReturnExpr               // return_stmt -> return expression ;
	SwitchStmt               // switch_stmt -> switch LABEL_SWITCH ( expression ) { case_stmts default_stmt }
	CaseStmtsMore            // case_stmts -> case_stmts case_stmt
	CaseStmtsEmpty           // case_stmts -> epsilon
	CaseStmt                 // case_stmt -> case PNUM NUM CASE_SAVE : statement_list
	DefaultStmt              // default_stmt -> default : statement_list
	DefaultEmpty             // default_stmt -> epsilon
	AssignExpr               // expression -> var = expression
	SimpleExpr               // expression -> simple_expression
	VarScalar                // var -> PID ID
	VarIndexed               // var -> PID ID [ expression ]
	RelExpr                  // simple_expression -> additive_expression relop additive_expression
	RelSingle                // simple_expression -> additive_expression
	RelopLess                // relop -> P_OP <
	RelopEqual               // relop -> P_OP ==
	AddExpr                  // additive_expression -> additive_expression addop term
	AddSingle                // additive_expression -> term
	AddopPlus                // addop -> P_OP +
	AddopMinus               // addop -> P_OP -
	MulExpr                  // term -> term mulop factor
	MulSingle                // term -> factor
	MulopTimes               // mulop -> P_OP *
	MulopDivide              // mulop -> P_OP /
	FactorParen              // factor -> ( expression )
	FactorVar                // factor -> var
	FactorCall               // factor -> call
	FactorNum                // factor -> PNUM NUM
	FactorOutput             // factor -> call_output
	Call                     // call -> PID ID ( CALL_BEGIN args )
	ArgsList                 // args -> arg_list
	ArgsEmpty                // args -> epsilon
	ArgListMore              // arg_list -> arg_list , expression
	ArgListOne               // arg_list -> expression
	OutputCall               // call_output -> output ( OUTPUT_BEGIN args )
	MarkPID                  // PID -> epsilon
	MarkPType                // PTYPE -> epsilon
	MarkPNum                 // PNUM -> epsilon
	MarkPOp                  // P_OP -> epsilon
	MarkBreakJP              // BREAK_JP -> epsilon
	MarkSave                 // SAVE -> epsilon
	MarkJpfSave              // JPF_SAVE -> epsilon
	MarkFunc                 // FUNC -> epsilon
	MarkVarDec               // VAR_DEC -> epsilon
	MarkArrayDec             // ARRAY_DEC -> epsilon
	MarkLabelWhile           // LABEL_WHILE -> epsilon
	MarkLabelSwitch          // LABEL_SWITCH -> epsilon
	MarkPSize                // PSIZE -> epsilon
	MarkCallBegin            // CALL_BEGIN -> epsilon
	MarkCaseSave             // CASE_SAVE -> epsilon
	MarkOutputBegin          // OUTPUT_BEGIN -> epsilon

	NumProductions
)

var rules = [NumProductions]Rule{
	Accept:          {"$accept", []string{"program"}},
	Program:         {"program", []string{"declaration_list"}},
	DeclListMore:    {"declaration_list", []string{"declaration_list", "declaration"}},
	DeclListOne:     {"declaration_list", []string{"declaration"}},
	DeclVar:         {"declaration", []string{"var_declaration"}},
	DeclFun:         {"declaration", []string{"fun_declaration"}},
	VarDecl:         {"var_declaration", []string{"type_specifier", "PID", "ID", "VAR_DEC", ";"}},
	ArrayDecl:       {"var_declaration", []string{"type_specifier", "PID", "ID", "[", "PSIZE", "NUM", "]", "ARRAY_DEC", ";"}},
	TypeInt:         {"type_specifier", []string{"PTYPE", "int"}},
	TypeVoid:        {"type_specifier", []string{"void"}},
	FunDecl:         {"fun_declaration", []string{"type_specifier", "PID", "ID", "FUNC", "(", "params", ")", "compound_stmt"}},
	ParamsList:      {"params", []string{"param_list"}},
	ParamsVoid:      {"params", []string{"void"}},
	ParamListMore:   {"param_list", []string{"param_list", ",", "param"}},
	ParamListOne:    {"param_list", []string{"param"}},
	ParamScalar:     {"param", []string{"type_specifier", "PID", "ID"}},
	ParamArray:      {"param", []string{"type_specifier", "PID", "ID", "[", "]"}},
	CompoundStmt:    {"compound_stmt", []string{"{", "local_declarations", "statement_list", "}"}},
	LocalDeclsMore:  {"local_declarations", []string{"local_declarations", "var_declaration"}},
	LocalDeclsEmpty: {"local_declarations", []string{}},
	StmtListMore:    {"statement_list", []string{"statement_list", "statement"}},
	StmtListEmpty:   {"statement_list", []string{}},
	StmtExpr:        {"statement", []string{"expression_stmt"}},
	StmtCompound:    {"statement", []string{"compound_stmt"}},
	StmtSelection:   {"statement", []string{"selection_stmt"}},
	StmtIteration:   {"statement", []string{"iteration_stmt"}},
	StmtReturn:      {"statement", []string{"return_stmt"}},
	StmtSwitch:      {"statement", []string{"switch_stmt"}},
	ExprStmt:        {"expression_stmt", []string{"expression", ";"}},
	BreakStmt:       {"expression_stmt", []string{"break", "BREAK_JP", ";"}},
	EmptyStmt:       {"expression_stmt", []string{";"}},
	IfStmt:          {"selection_stmt", []string{"if", "(", "expression", ")", "SAVE", "statement", "endif"}},
	IfElseStmt:      {"selection_stmt", []string{"if", "(", "expression", ")", "SAVE", "statement", "JPF_SAVE", "else", "statement", "endif"}},
	WhileStmt:       {"iteration_stmt", []string{"while", "LABEL_WHILE", "(", "expression", ")", "SAVE", "statement"}},
	ReturnVoid:      {"return_stmt", []string{"return", ";"}},
	ReturnExpr:      {"return_stmt", []string{"return", "expression", ";"}},
	SwitchStmt:      {"switch_stmt", []string{"switch", "LABEL_SWITCH", "(", "expression", ")", "{", "case_stmts", "default_stmt", "}"}},
	CaseStmtsMore:   {"case_stmts", []string{"case_stmts", "case_stmt"}},
	CaseStmtsEmpty:  {"case_stmts", []string{}},
	CaseStmt:        {"case_stmt", []string{"case", "PNUM", "NUM", "CASE_SAVE", ":", "statement_list"}},
	DefaultStmt:     {"default_stmt", []string{"default", ":", "statement_list"}},
	DefaultEmpty:    {"default_stmt", []string{}},
	AssignExpr:      {"expression", []string{"var", "=", "expression"}},
	SimpleExpr:      {"expression", []string{"simple_expression"}},
	VarScalar:       {"var", []string{"PID", "ID"}},
	VarIndexed:      {"var", []string{"PID", "ID", "[", "expression", "]"}},
	RelExpr:         {"simple_expression", []string{"additive_expression", "relop", "additive_expression"}},
	RelSingle:       {"simple_expression", []string{"additive_expression"}},
	RelopLess:       {"relop", []string{"P_OP", "<"}},
	RelopEqual:      {"relop", []string{"P_OP", "=="}},
	AddExpr:         {"additive_expression", []string{"additive_expression", "addop", "term"}},
	AddSingle:       {"additive_expression", []string{"term"}},
	AddopPlus:       {"addop", []string{"P_OP", "+"}},
	AddopMinus:      {"addop", []string{"P_OP", "-"}},
	MulExpr:         {"term", []string{"term", "mulop", "factor"}},
	MulSingle:       {"term", []string{"factor"}},
	MulopTimes:      {"mulop", []string{"P_OP", "*"}},
	MulopDivide:     {"mulop", []string{"P_OP", "/"}},
	FactorParen:     {"factor", []string{"(", "expression", ")"}},
	FactorVar:       {"factor", []string{"var"}},
	FactorCall:      {"factor", []string{"call"}},
	FactorNum:       {"factor", []string{"PNUM", "NUM"}},
	FactorOutput:    {"factor", []string{"call_output"}},
	Call:            {"call", []string{"PID", "ID", "(", "CALL_BEGIN", "args", ")"}},
	ArgsList:        {"args", []string{"arg_list"}},
	ArgsEmpty:       {"args", []string{}},
	ArgListMore:     {"arg_list", []string{"arg_list", ",", "expression"}},
	ArgListOne:      {"arg_list", []string{"expression"}},
	OutputCall:      {"call_output", []string{"output", "(", "OUTPUT_BEGIN", "args", ")"}},
	MarkPID:         {"PID", []string{}},
	MarkPType:       {"PTYPE", []string{}},
	MarkPNum:        {"PNUM", []string{}},
	MarkPOp:         {"P_OP", []string{}},
	MarkBreakJP:     {"BREAK_JP", []string{}},
	MarkSave:        {"SAVE", []string{}},
	MarkJpfSave:     {"JPF_SAVE", []string{}},
	MarkFunc:        {"FUNC", []string{}},
	MarkVarDec:      {"VAR_DEC", []string{}},
	MarkArrayDec:    {"ARRAY_DEC", []string{}},
	MarkLabelWhile:  {"LABEL_WHILE", []string{}},
	MarkLabelSwitch: {"LABEL_SWITCH", []string{}},
	MarkPSize:       {"PSIZE", []string{}},
	MarkCallBegin:   {"CALL_BEGIN", []string{}},
	MarkCaseSave:    {"CASE_SAVE", []string{}},
	MarkOutputBegin: {"OUTPUT_BEGIN", []string{}},
}

func (p Production) Rule() Rule { return rules[p] }

func (p Production) String() string {
	if p < 0 || p >= NumProductions {
		return "invalid production"
	}
	return rules[p].String()
}
