package mdtransform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preamble file names inside a session's template directory.
const (
	StyledPreambleFile = "document_pdf.tex"
	BarePreambleFile   = "document_no.tex"
)

// WriteStyledPreamble writes the full preamble with fancyhdr page headers,
// the cover and statement page macros, and CJK setup. Header and footer
// text is escaped before splicing. Returns the written path.
func WriteStyledPreamble(dir, leftHeader, rightHeader, coverFooter string) (string, error) {
	content := strings.NewReplacer(
		"<<LEFT-HEADER>>", latexEscape(leftHeader),
		"<<RIGHT-HEADER>>", latexEscape(rightHeader),
		"<<COVER-FOOTER>>", latexEscape(coverFooter),
	).Replace(styledPreamble)
	return writePreamble(dir, StyledPreambleFile, content)
}

// WriteBarePreamble writes the headerless preamble used when no template
// styling was requested. Returns the written path.
func WriteBarePreamble(dir string) (string, error) {
	return writePreamble(dir, BarePreambleFile, barePreamble)
}

func writePreamble(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create template dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write preamble: %w", err)
	}
	return path, nil
}

var latexReplacer = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

// latexEscape neutralizes characters the engine treats as markup so
// user-supplied field text renders literally.
func latexEscape(s string) string {
	return latexReplacer.Replace(s)
}

// latexPathSanitize prepares a filesystem path for splicing into a macro
// argument. Paths are not escaped like text since \includegraphics needs
// them verbatim; braces and percent signs are stripped instead, as they
// cannot appear in a valid path argument anyway.
func latexPathSanitize(path string) string {
	path = filepath.ToSlash(path)
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '%', '\\':
			return -1
		}
		return r
	}, path)
}

// styledPreamble carries three replacement slots: left header, right
// header, cover footer. The \coverpage macro takes title, version, date, and logo
// path; an empty logo argument skips the \includegraphics via \notblank so
// a missing logo degrades to a text-only cover.
const styledPreamble = `\usepackage{needspace}
\usepackage{fancyhdr}
\usepackage{graphicx}
\usepackage{amsmath}
\usepackage{hyperref}
\usepackage{geometry}
\usepackage{xcolor}
\usepackage{fontspec}
\usepackage{tocloft}
\usepackage{titlesec}
\usepackage{longtable}
\usepackage{booktabs}
\usepackage{listings}
\usepackage{xeCJK}
\usepackage{etoolbox}
\usepackage{array}
\usepackage{caption}
\usepackage{tabularx}

% page layout
\geometry{
    a4paper,
    left=25mm,
    right=25mm,
    top=25mm,
    bottom=25mm,
}

% CJK main font
\setCJKmainfont{SimSun}
\setmainfont{SimSun}

% headers and footers
\fancypagestyle{plain}{
    \fancyhf{}
    \fancyhead[L]{<<LEFT-HEADER>>}
    \fancyhead[R]{<<RIGHT-HEADER>>}
    \fancyfoot[C]{\thepage}
}

\pagestyle{plain}

\colorlet{mycolor}{blue}
\newcommand{\highlight}[1]{\textbf{\textcolor{mycolor}{#1}}}

\renewcommand{\baselinestretch}{1.5}

% table of contents
\renewcommand{\contentsname}{\centering 目录}

\renewcommand{\cftsecfont}{\bfseries\fontsize{16pt}{16pt}\selectfont}
\renewcommand{\cftsubsecfont}{\bfseries\fontsize{15pt}{15pt}\selectfont}
\renewcommand{\cftsubsubsecfont}{\bfseries\fontsize{15pt}{15pt}\selectfont}
\renewcommand{\cftsecpagefont}{\bfseries}
\renewcommand{\cftsubsecpagefont}{\bfseries}
\renewcommand{\cftsubsubsecpagefont}{\bfseries}
\setlength{\cftbeforesecskip}{0.5em}
\setlength{\cftbeforesubsecskip}{0.2em}

% blank line ahead of every top-level entry
\pretocmd{\section}{\addtocontents{toc}{\protect\addvspace{1.0\baselineskip}}}{}{}

\renewcommand{\cfttoctitlefont}{\hfill\Huge\bfseries}
\renewcommand{\cftaftertoctitle}{\hfill}

% section heading format
\titleformat{\section}{\normalfont\Large\bfseries}{\thesection}{1em}{}
\titleformat{\subsection}{\normalfont\large\bfseries}{\thesubsection}{1em}{}
\titleformat{\subsubsection}{\normalfont\normalsize\bfseries}{\thesubsubsection}{1em}{}

\setlength{\cftsecnumwidth}{3em}
\setlength{\cftsubsecnumwidth}{3.5em}
\setlength{\cftsubsubsecnumwidth}{4em}

\setcounter{secnumdepth}{3}
\setcounter{tocdepth}{3}

\cftsetindents{section}{1.5em}{3em}
\cftsetindents{subsection}{3.5em}{3.5em}
\cftsetindents{subsubsection}{7em}{4em}

% tables
\captionsetup[table]{skip=10pt}
\newcolumntype{L}[1]{|>{\raggedright\arraybackslash}p{#1}|}
\newcolumntype{C}[1]{|>{\centering\arraybackslash}p{#1}|}
\newcolumntype{R}[1]{|>{\raggedleft\arraybackslash}p{#1}|}

% code listings
\lstset{
    basicstyle=\ttfamily,
    breaklines=true,
    frame=single,
    backgroundcolor=\color{gray!10},
    extendedchars=true,
    inputencoding=utf8,
    literate={一}{\CJKchar{"4E00}}1
             {二}{\CJKchar{"4E8C}}1
             {三}{\CJKchar{"4E09}}1
             {四}{\CJKchar{"56DB}}1
             {五}{\CJKchar{"4E94}}1
             {六}{\CJKchar{"516D}}1
             {七}{\CJKchar{"4E03}}1
             {八}{\CJKchar{"516B}}1
             {九}{\CJKchar{"4E5D}}1
             {零}{\CJKchar{"96F6}}1
}

\hypersetup{
    colorlinks=true,
    linkcolor=black,
    urlcolor=black,
    filecolor=black,
    citecolor=black
}

% cover page: title, version, date, logo path (may be blank)
\newcommand{\coverpage}[4]{
    \begin{titlepage}
        \notblank{#4}{
            \begin{flushleft}
                \includegraphics[width=0.2\textwidth]{#4}
            \end{flushleft}
        }{}
        \centering
        \vspace{5cm}
        {\Huge\bfseries #1 \par}
        \vspace{1.5cm}
        {\Large #2 \par}
        \vspace{1.5cm}
        {\Large #3 \par}
        \vfill
        {\Large <<COVER-FOOTER>> \par}
    \end{titlepage}
}

% statement page
\newcommand{\statementpage}[1]{
    \begin{center}
        \vspace*{2cm}
        {\Large\bfseries 声明 \par}
        \vspace{1.5cm}
        {\large #1 \par}
        \vfill
    \end{center}
}

% figure captions numbered per section
\captionsetup[figure]{
    labelformat=simple,
    labelsep=quad,
    font=small,
    justification=centering,
    format=hang,
    singlelinecheck=off
}
\renewcommand\figurename{图}
\renewcommand\thefigure{\thesection.\arabic{figure}}
\makeatletter
\@addtoreset{figure}{section}
\makeatother
`

// barePreamble keeps the same typography without headers, footers, or the
// cover and statement machinery.
const barePreamble = `\usepackage{graphicx}
\usepackage{amsmath}
\usepackage{hyperref}
\usepackage{geometry}
\usepackage{xcolor}
\usepackage{fontspec}
\usepackage{titlesec}
\usepackage{longtable}
\usepackage{booktabs}
\usepackage{listings}
\usepackage{xeCJK}
\usepackage{etoolbox}
\usepackage{array}
\usepackage{caption}
\usepackage{tabularx}
\usepackage{needspace}

% page layout
\geometry{
    a4paper,
    left=25mm,
    right=25mm,
    top=25mm,
    bottom=25mm,
}

% CJK main font
\setCJKmainfont{SimSun}
\setmainfont{SimSun}

\pagestyle{empty}

\colorlet{mycolor}{blue}
\newcommand{\highlight}[1]{\textbf{\textcolor{mycolor}{#1}}}

\renewcommand{\baselinestretch}{1.5}

% section heading format
\titleformat{\section}{\normalfont\Large\bfseries}{\thesection}{1em}{}
\titleformat{\subsection}{\normalfont\large\bfseries}{\thesubsection}{1em}{}
\titleformat{\subsubsection}{\normalfont\normalsize\bfseries}{\thesubsubsection}{1em}{}

\setcounter{secnumdepth}{3}
\setcounter{tocdepth}{3}

% tables
\captionsetup[table]{skip=10pt}
\newcolumntype{L}[1]{|>{\raggedright\arraybackslash}p{#1}|}
\newcolumntype{C}[1]{|>{\centering\arraybackslash}p{#1}|}
\newcolumntype{R}[1]{|>{\raggedleft\arraybackslash}p{#1}|}

% code listings
\lstset{
    basicstyle=\ttfamily,
    breaklines=true,
    frame=single,
    backgroundcolor=\color{gray!10},
    extendedchars=true,
    inputencoding=utf8,
    literate={一}{\CJKchar{"4E00}}1
             {二}{\CJKchar{"4E8C}}1
             {三}{\CJKchar{"4E09}}1
             {四}{\CJKchar{"56DB}}1
             {五}{\CJKchar{"4E94}}1
             {六}{\CJKchar{"516D}}1
             {七}{\CJKchar{"4E03}}1
             {八}{\CJKchar{"516B}}1
             {九}{\CJKchar{"4E5D}}1
             {零}{\CJKchar{"96F6}}1
}

\hypersetup{
    colorlinks=true,
    linkcolor=black,
    urlcolor=black,
    filecolor=black,
    citecolor=black
}

% figure captions numbered per section
\captionsetup[figure]{
    labelformat=simple,
    labelsep=quad,
    font=small,
    justification=centering,
    format=hang,
    singlelinecheck=off
}
\renewcommand\figurename{图}
\renewcommand\thefigure{\thesection.\arabic{figure}}
\makeatletter
\@addtoreset{figure}{section}
\makeatother
`
