package llm

// ImagePrompt asks for the five labeled sections from a chart screenshot.
const ImagePrompt = `Eres un analista de trading. Analiza la imagen del grafico y responde con este formato exacto:

ANALISIS: [Detalles tecnicos: estructura, soportes, resistencias, patrones]
DECISION: [OPERAR / ESPERAR / NO OPERAR]
TIPO: [COMPRA / VENTA / N/A]
RIESGO: [BAJO / MEDIO / ALTO]
MOTIVO: [Explicacion de por que tomas esa decision]

REGLA: Usa solo estas palabras clave y se muy claro.`

// DataPrompt asks for the same sections from a numeric market summary, which
// is appended after it.
const DataPrompt = `Eres un analista de trading. A partir de los siguientes datos de mercado en tiempo real, responde con este formato exacto:

ANALISIS: [Lectura tecnica de precio, RSI, EMAs y tendencia]
DECISION: [OPERAR / ESPERAR / NO OPERAR]
TIPO: [COMPRA / VENTA / N/A]
RIESGO: [BAJO / MEDIO / ALTO]
MOTIVO: [Explicacion de por que tomas esa decision]

REGLA: Usa solo estas palabras clave y se muy claro.

DATOS:`
