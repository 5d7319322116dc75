// Package engine reproduce una serie de barras diarias de a una barra por vez,
// pasa cada barra nueva a una estrategia y registra los trades en un ledger.
//
// Las piezas, de la hoja hacia arriba:
//   - Ledger: como máximo una posición long abierta, trades cerrados, balance.
//   - Controller: cursor, ventana visible y la máquina de estados
//     STOPPED/PLAYING/PAUSED. Cada método es una sola sección crítica.
//   - Runner: marca el ritmo de los ticks con un token bucket y reenvía eventos.
//   - Session: catálogo importado, instrumento seleccionado y estado de display.
package engine
